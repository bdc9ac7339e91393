package conf

import "os"

// applyEnvOverrides lets a handful of deployment-critical fields be set
// without touching config.yaml, following the same env-override precedent
// as the rest of the corpus's conf package (secrets and connection strings
// in particular should not have to live in a checked-in YAML file).
func applyEnvOverrides(s *Settings) {
	if v := os.Getenv("ONSETGO_DATASTORE_DSN"); v != "" {
		s.Datastore.DSN = v
	}
	if v := os.Getenv("ONSETGO_MQTT_BROKER"); v != "" {
		s.Notify.MQTT.Broker = v
	}
	if v := os.Getenv("ONSETGO_MQTT_PASSWORD"); v != "" {
		s.Notify.MQTT.Password = v
	}
	if v := os.Getenv("ONSETGO_BACKUP_FTP_PASSWORD"); v != "" {
		s.Backup.FTP.Password = v
	}
	if v := os.Getenv("ONSETGO_TELEMETRY_DSN"); v != "" {
		s.Telemetry.DSN = v
	}
}

package conf

import "bytes"

// bytesReader adapts a byte slice to the io.Reader viper.ReadConfig expects,
// named distinctly from bytes.NewReader so config.go reads as a small seam
// rather than a raw stdlib call.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

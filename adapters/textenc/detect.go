package textenc

import (
	"bytes"
	"log"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// Confidence below this is reported to the user as a guess. Processing
// still proceeds with the detected charset.
const lowConfidence = 40

// Detection describes the outcome of charset detection on a raw file.
type Detection struct {
	Charset       string
	Confidence    int
	LowConfidence bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode sniffs the character encoding of raw file content and returns
// it decoded to UTF-8. Detection never fails hard: when the detector
// has nothing to offer the content is treated as UTF-8, mirroring the
// best-guess behavior the lab tooling expects.
func Decode(raw []byte) (string, Detection) {
	if len(raw) == 0 {
		return "", Detection{Charset: "UTF-8", Confidence: 100}
	}

	det := Detection{Charset: "UTF-8"}
	best, err := chardet.NewTextDetector().DetectBest(raw)
	if err == nil && best != nil {
		det.Charset = best.Charset
		det.Confidence = best.Confidence
		det.LowConfidence = best.Confidence < lowConfidence
	} else {
		det.LowConfidence = true
		log.Printf("[textenc] charset detection failed (%v), assuming UTF-8", err)
	}

	enc := lookupEncoding(det.Charset)
	if enc == nil {
		log.Printf("[textenc] no decoder for charset %q, assuming UTF-8", det.Charset)
		det.LowConfidence = true
		return string(bytes.TrimPrefix(raw, utf8BOM)), det
	}

	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		log.Printf("[textenc] decode as %s failed (%v), falling back to raw bytes", det.Charset, err)
		det.LowConfidence = true
		return string(bytes.TrimPrefix(raw, utf8BOM)), det
	}
	return string(bytes.TrimPrefix(decoded, utf8BOM)), det
}

// lookupEncoding maps a detector charset name onto an x/text decoder.
func lookupEncoding(name string) encoding.Encoding {
	switch name {
	case "", "UTF-8":
		return unicode.UTF8
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil
	}
	return enc
}

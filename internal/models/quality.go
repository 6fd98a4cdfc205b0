package models

import "strings"

// VideoQuality represents the quality tier of a session video download
type VideoQuality int

const (
	QualityUnknown VideoQuality = iota
	QualitySD
	QualityHD
)

// String returns the string representation of the quality
func (q VideoQuality) String() string {
	switch q {
	case QualitySD:
		return "sd"
	case QualityHD:
		return "hd"
	default:
		return "unknown"
	}
}

// ParseVideoQuality converts a quality token to a VideoQuality enum.
// Unknown tokens map to QualityUnknown rather than failing.
func ParseVideoQuality(token string) VideoQuality {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "sd":
		return QualitySD
	case "hd":
		return QualityHD
	default:
		return QualityUnknown
	}
}

// MarshalJSON implements json.Marshaler interface
func (q VideoQuality) MarshalJSON() ([]byte, error) {
	return []byte(`"` + q.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler interface
func (q *VideoQuality) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	*q = ParseVideoQuality(str)
	return nil
}

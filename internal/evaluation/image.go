package evaluation

import (
	"encoding/base64"
	"encoding/json"
)

// DataURL encodes the image for direct embedding, e.g. in an <img> tag.
func (p *PrototypeImage) DataURL() string {
	if p == nil {
		return ""
	}
	return "data:" + p.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

func (p *PrototypeImage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		MIMEType string `json:"mimeType"`
		DataURL  string `json:"dataUrl"`
	}{p.MIMEType, p.DataURL()})
}

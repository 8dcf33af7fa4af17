package wire

import (
	"encoding/xml"
	"net/http"

	"github.com/stratuslocal/stratus/internal/logger"
)

// WriteXML writes v as an XML document with the UTF-8 declaration.
func WriteXML(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	if err := xml.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode xml response", "error", err)
	}
}

// XMLErrorDocument is the S3-style error body.
type XMLErrorDocument struct {
	XMLName   xml.Name `xml:"Error"`
	Code      string   `xml:"Code"`
	Message   string   `xml:"Message"`
	Resource  string   `xml:"Resource,omitempty"`
	RequestID string   `xml:"RequestId"`
}

// WriteXMLError writes ae as an S3-style XML error document.
func WriteXMLError(w http.ResponseWriter, ae *APIError, resource, requestID string) {
	WriteXML(w, ae.Status, XMLErrorDocument{
		Code:      ae.Code,
		Message:   ae.Message,
		Resource:  resource,
		RequestID: requestID,
	})
}

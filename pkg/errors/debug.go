package errors

import (
	stdErrors "errors"
	"fmt"
)

// ErrorDump is the log-side view of an error: its code, how it was rendered
// and every wrapped cause.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	HTTPStatus int      `json:"http_status,omitempty"`
	Retryable  bool     `json:"retryable,omitempty"`
	Chain      []string `json:"chain,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	code := CodeOf(err)
	meta := MetadataFor(code)
	d := ErrorDump{
		TopMessage: err.Error(),
		Code:       code,
		HTTPStatus: meta.HTTPStatus,
		Retryable:  meta.Retryable,
	}
	for e := err; e != nil; e = stdErrors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

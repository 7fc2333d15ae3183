package apiclient

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
)

// Response is a successful API response. JSON bodies are decoded into Data;
// other bodies are kept in Text.
type Response struct {
	StatusCode int
	Header     http.Header
	Data       any
	Text       string

	raw []byte
}

// IsJSON reports whether the response declared a JSON content type.
func (r *Response) IsJSON() bool {
	return isJSON(r.Header.Get("Content-Type"))
}

// Bytes returns the raw response body.
func (r *Response) Bytes() []byte {
	return r.raw
}

// Decode unmarshals the raw JSON body into v.
func (r *Response) Decode(v any) error {
	if !r.IsJSON() {
		return fmt.Errorf("%w: content type %q is not json", ErrDecode, r.Header.Get("Content-Type"))
	}
	if err := json.Unmarshal(r.raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || (len(mt) > 5 && mt[len(mt)-5:] == "+json")
}

// errorMessage picks the message of a failed response: results.data.error,
// then message, then the body itself, then a fixed fallback.
func errorMessage(data any, text string) string {
	if obj, ok := data.(map[string]any); ok {
		if results, ok := obj["results"].(map[string]any); ok {
			if inner, ok := results["data"].(map[string]any); ok {
				if msg := stringValue(inner["error"]); msg != "" {
					return msg
				}
			}
		}
		if msg := stringValue(obj["message"]); msg != "" {
			return msg
		}
	}

	if data != nil {
		if b, err := json.Marshal(data); err == nil && string(b) != "null" {
			return string(b)
		}
	}
	if text != "" {
		return text
	}
	return msgAPIFallback
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

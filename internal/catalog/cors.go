package catalog

import "net/http"

// CORSHeaders are sent on every catalog response, preflight included, by
// every deployment.
var CORSHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "GET, OPTIONS",
}

// SetCORSHeaders writes CORSHeaders onto h.
func SetCORSHeaders(h http.Header) {
	for k, v := range CORSHeaders {
		h.Set(k, v)
	}
}

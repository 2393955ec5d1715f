package httpx

import "net/http"

// Status codes used by rowcache handlers.
const (
	StatusOK                 = http.StatusOK
	StatusNoContent          = http.StatusNoContent
	StatusBadRequest         = http.StatusBadRequest
	StatusInternalError      = http.StatusInternalServerError
	StatusServiceUnavailable = http.StatusServiceUnavailable
)

package ncm

import "fmt"

// codeError reports an upstream status code on an endpoint whose caller needs
// a hard answer (the login key/create steps).
type codeError struct {
	endpoint string
	code     int
}

func errCode(endpoint string, code int) error {
	return &codeError{endpoint: endpoint, code: code}
}

func (e *codeError) Error() string {
	return fmt.Sprintf("ncm: %s returned code %d", e.endpoint, e.code)
}

package common

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	pkgHTTP "github.com/futig/notes-backend/pkg/http"
	"github.com/sashabaranov/go-openai"
)

// TranslateError maps SDK errors onto the pkg/http error types so retry
// policy and logging treat SDK and raw HTTP calls the same way.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		httpErr := &pkgHTTP.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Type: apiErr.Type}
		if apiErr.Code != nil {
			httpErr.Code = fmt.Sprint(apiErr.Code)
		}
		return httpErr
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &pkgHTTP.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &pkgHTTP.NetworkError{Err: err}
	}

	return err
}

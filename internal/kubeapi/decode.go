package kubeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/scheme"

	"kubewire/internal/outbound"
)

// APIError is returned by Decode for responses outside the 2xx range.
type APIError struct {
	StatusCode int
	// Status is the decoded metav1.Status body, when the server sent one.
	Status *metav1.Status
	Body   []byte
}

func (e *APIError) Error() string {
	if e.Status != nil && e.Status.Message != "" {
		return fmt.Sprintf("kubernetes API returned %d %s: %s", e.StatusCode, e.Status.Reason, e.Status.Message)
	}
	body := strings.TrimSpace(string(e.Body))
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("kubernetes API returned %d: %s", e.StatusCode, body)
}

// Reason returns the machine readable reason of the failure, if known.
func (e *APIError) Reason() metav1.StatusReason {
	if e.Status == nil {
		return metav1.StatusReasonUnknown
	}
	return e.Status.Reason
}

// Decode checks resp's status and decodes its body into into. Kubernetes
// objects are decoded with the client-go scheme; anything else, such as
// version.Info, is decoded as plain JSON. A nil into only checks the status.
func Decode(resp *outbound.Response, into interface{}) error {
	if resp == nil {
		return fmt.Errorf("no response to decode")
	}
	if resp.Status < 200 || resp.Status > 299 {
		return newAPIError(resp)
	}
	if into == nil {
		return nil
	}

	if obj, ok := into.(runtime.Object); ok {
		if _, _, err := scheme.Codecs.UniversalDeserializer().Decode(resp.Body, nil, obj); err != nil {
			return fmt.Errorf("failed to decode %T: %w", into, err)
		}
		return nil
	}

	if err := json.Unmarshal(resp.Body, into); err != nil {
		return fmt.Errorf("failed to decode %T: %w", into, err)
	}
	return nil
}

func newAPIError(resp *outbound.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.Status, Body: resp.Body}

	status := &metav1.Status{}
	if err := json.Unmarshal(resp.Body, status); err == nil && status.Kind == "Status" {
		apiErr.Status = status
	}
	return apiErr
}

package kubeapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/version"

	"kubewire/internal/outbound"
)

const podListJSON = `{
  "kind": "PodList",
  "apiVersion": "v1",
  "metadata": {"resourceVersion": "42"},
  "items": [
    {"metadata": {"name": "web-0", "namespace": "default"}, "status": {"phase": "Running"}},
    {"metadata": {"name": "web-1", "namespace": "default"}, "status": {"phase": "Pending"}}
  ]
}`

func TestDecodeKubernetesObject(t *testing.T) {
	pods := &corev1.PodList{}
	err := Decode(&outbound.Response{Status: http.StatusOK, Body: []byte(podListJSON)}, pods)
	require.NoError(t, err)

	require.Len(t, pods.Items, 2)
	assert.Equal(t, "web-0", pods.Items[0].Name)
	assert.Equal(t, corev1.PodPending, pods.Items[1].Status.Phase)
	assert.Equal(t, "42", pods.ResourceVersion)
}

func TestDecodeVersionInfo(t *testing.T) {
	info := &version.Info{}
	err := Decode(&outbound.Response{Status: http.StatusOK, Body: []byte(`{"major":"1","minor":"33","gitVersion":"v1.33.0"}`)}, info)
	require.NoError(t, err)
	assert.Equal(t, "v1.33.0", info.GitVersion)
	assert.Equal(t, "33", info.Minor)
}

func TestDecodeStatusError(t *testing.T) {
	body := `{"kind":"Status","apiVersion":"v1","status":"Failure","message":"pods is forbidden: User \"kubewire-user\" cannot list resource \"pods\"","reason":"Forbidden","code":403}`

	err := Decode(&outbound.Response{Status: http.StatusForbidden, Body: []byte(body)}, &corev1.PodList{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.NotNil(t, apiErr.Status)
	assert.Equal(t, metav1.StatusReasonForbidden, apiErr.Reason())
	assert.Contains(t, err.Error(), "403 Forbidden")
	assert.Contains(t, err.Error(), "cannot list resource")
}

func TestDecodeErrorWithoutStatusBody(t *testing.T) {
	err := Decode(&outbound.Response{Status: http.StatusBadGateway, Body: []byte("upstream gone\n")}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Nil(t, apiErr.Status)
	assert.Equal(t, metav1.StatusReasonUnknown, apiErr.Reason())
	assert.Equal(t, "kubernetes API returned 502: upstream gone", err.Error())

	err = Decode(&outbound.Response{Status: http.StatusNotFound}, nil)
	assert.Equal(t, "kubernetes API returned 404: Not Found", err.Error())
}

func TestDecodeMalformedBody(t *testing.T) {
	err := Decode(&outbound.Response{Status: http.StatusOK, Body: []byte("not json")}, &corev1.PodList{})
	assert.Error(t, err)

	err = Decode(&outbound.Response{Status: http.StatusOK, Body: []byte("not json")}, &version.Info{})
	assert.Error(t, err)
}

func TestDecodeStatusOnly(t *testing.T) {
	assert.NoError(t, Decode(&outbound.Response{Status: http.StatusNoContent}, nil))
	assert.Error(t, Decode(nil, nil))
}

// Package connection resolves how to reach and authenticate against a
// Kubernetes API server from a kubeconfig.
//
// Credential material (the cluster CA, the user key and the user
// certificate) can be embedded in the kubeconfig as base64 data or
// referenced by path. Embedded data always wins; the file is only read when
// no data is present. Every failure is reported as a *kerrors.ConfigError
// tagged with the field it concerns.
//
// # Usage Example
//
//	cc, err := connection.FromKubeConfig()
//	if err != nil {
//	    return err
//	}
//	handle, err := cc.Register(client)
//	if err != nil {
//	    return err
//	}
//	resp, err := wire.MakeRequest(ctx, req, cc, handle, client)
package connection

package grpcclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"

	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// bearerCreds attaches the stored token to every call. Without a token the
// call goes out anonymous.
type bearerCreds struct {
	store  TokenStore
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	tok, err := b.store.Load()
	if err != nil {
		return map[string]string{}, nil
	}
	return map[string]string{"authorization": "Bearer " + tok.AccessToken}, nil
}

func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

// transportCreds selects TLS settings: plaintext (dev only), TLS without
// verification, TLS against a custom CA, or system roots.
func transportCreds(caPath string, skipVerify, plaintext bool) (credentials.TransportCredentials, error) {
	if plaintext {
		return insecure.NewCredentials(), nil
	}
	if skipVerify {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil //nolint:gosec // explicit dev flag
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

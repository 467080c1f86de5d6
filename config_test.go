package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{port: 8080}, false},
		{"tls pair", Config{port: 8080, tlsCert: "cert.pem", tlsKey: "key.pem"}, false},
		{"tls cert only", Config{port: 8080, tlsCert: "cert.pem"}, true},
		{"tls key only", Config{port: 8080, tlsKey: "key.pem"}, true},
		{"port too low", Config{port: 0}, true},
		{"port too high", Config{port: 70000}, true},
		{"public url", Config{port: 8080, publicURL: "https://quiz.example.com"}, false},
		{"relative public url", Config{port: 8080, publicURL: "/quiz"}, true},
		{"garbage public url", Config{port: 8080, publicURL: "://nope"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	require.Equal(t, "http", (&Config{}).scheme())
	require.Equal(t, "https", (&Config{tlsCert: "cert.pem", tlsKey: "key.pem"}).scheme())
}

package s3

import (
	"strings"
	"testing"
)

func TestNormalizeEndpoint(t *testing.T) {
	cases := []struct {
		in      string
		ssl     bool
		want    string
		wantSSL bool
	}{
		{"localhost:9000", false, "localhost:9000", false},
		{"http://minio:9000", false, "minio:9000", false},
		{"https://s3.example.com", false, "s3.example.com", true},
		{"s3.example.com", true, "s3.example.com", true},
	}

	for _, c := range cases {
		got, ssl := normalizeEndpoint(c.in, c.ssl)
		if got != c.want || ssl != c.wantSSL {
			t.Errorf("normalizeEndpoint(%q, %v) = %q, %v; want %q, %v", c.in, c.ssl, got, ssl, c.want, c.wantSSL)
		}
	}
}

func TestContentDisposition(t *testing.T) {
	if got := ContentDisposition("a.txt"); got != "inline; filename=a.txt" {
		t.Errorf("ascii name = %q", got)
	}

	got := ContentDisposition("报告.pdf")
	if !strings.HasPrefix(got, "inline; filename*=utf-8''") {
		t.Errorf("non-ascii name = %q", got)
	}
}

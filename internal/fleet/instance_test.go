package fleet

import "testing"

func TestInstance_SSHAddress(t *testing.T) {
	tests := []struct {
		name     string
		instance Instance
		want     string
	}{
		{"default port", Instance{Host: "10.0.0.1"}, "10.0.0.1:22"},
		{"explicit port", Instance{Host: "10.0.0.1", Port: 2222}, "10.0.0.1:2222"},
		{"hostname", Instance{Host: "bench-0.example.com"}, "bench-0.example.com:22"},
		{"ipv6", Instance{Host: "fe80::1", Port: 22}, "[fe80::1]:22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.instance.SSHAddress(); got != tt.want {
				t.Errorf("SSHAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstance_String(t *testing.T) {
	named := Instance{Name: "validator-3", Host: "10.0.0.4"}
	if got := named.String(); got != "validator-3" {
		t.Errorf("String() = %q, want name", got)
	}

	unnamed := Instance{Host: "10.0.0.4"}
	if got := unnamed.String(); got != "10.0.0.4:22" {
		t.Errorf("String() = %q, want address fallback", got)
	}
}

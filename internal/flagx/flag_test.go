package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-s", "secret", "-a", ":8080"}, []string{"-s"}, []string{"-s", "secret"}},
		{"equals form", []string{"--config=alt.json", "-a", ":80"}, []string{"--config"}, []string{"--config=alt.json"}},
		{"unknown flags dropped", []string{"-x", "1", "--y=2", "positional"}, []string{"-c"}, []string{}},
		{"trailing flag without value", []string{"-c"}, []string{"-c"}, []string{"-c"}},
		{"next flag is not a value", []string{"-c", "-d", "dsn"}, []string{"-c"}, []string{"-c"}},
		{"order preserved", []string{"-a", ":80", "-x", "1", "-d", "dsn"}, []string{"-a", "-d"}, []string{"-a", ":80", "-d", "dsn"}},
		{"repeated flag kept", []string{"-c", "one.json", "-c", "two.json"}, []string{"-c"}, []string{"-c", "one.json", "-c", "two.json"}},
		{"empty", []string{}, []string{"-c"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short", []string{"-c", "/etc/marketplace.json"}, "/etc/marketplace.json"},
		{"long", []string{"-config", "/etc/long.json"}, "/etc/long.json"},
		{"double dash equals", []string{"--config=/etc/eq.json"}, "/etc/eq.json"},
		{"absent", []string{"-a", ":80", "-s", "secret"}, ""},
		{"last wins", []string{"-c", "/1.json", "-config", "/2.json"}, "/2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFileFlag(tt.args))
		})
	}
}

func TestJsonConfigFlags_ReadsProcessArgs(t *testing.T) {
	orig := os.Args
	t.Cleanup(func() { os.Args = orig })

	os.Args = []string{"server", "-c", "/path/conf.json", "-a", ":9000"}
	assert.Equal(t, "/path/conf.json", JsonConfigFlags())
}

package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// templateEnv mirrors Environment without secrets; those stay in the
// environment or .env.
type templateEnv struct {
	URI      string `yaml:"uri"`
	CertDir  string `yaml:"cert_dir,omitempty"`
	CertFile string `yaml:"cert_file,omitempty"`
	KeyFile  string `yaml:"key_file,omitempty"`
}

type templateDoc struct {
	Version int               `yaml:"version"`
	Prod    templateEnv       `yaml:"prod"`
	Dev     templateEnv       `yaml:"dev"`
	Notify  NotifyConfig      `yaml:"notify"`
	Poll    map[string]string `yaml:"poll"`
	Output  OutputConfig      `yaml:"output"`
}

// Template renders a starter .rollout.yaml with the given API URIs.
func Template(prodURI, devURI string) ([]byte, error) {
	def := DefaultConfig()
	doc := templateDoc{
		Version: CurrentConfigVersion,
		Prod:    templateEnv{URI: prodURI},
		Dev:     templateEnv{URI: devURI},
		Notify:  def.Notify,
		Poll: map[string]string{
			"interval": def.Poll.Interval.String(),
			"timeout":  "0s",
		},
		Output: def.Output,
	}

	var node yaml.Node
	if err := node.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	node.HeadComment = fmt.Sprintf(
		"# rollout configuration.\n# Credentials are read from %s/%s (and %s/%s for --dev),\n# never from this file.",
		EnvVar("prod.key"), EnvVar("prod.secret"), EnvVar("dev.key"), EnvVar("dev.secret"))

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTemplate writes Template output to path with 0644 permissions.
func WriteTemplate(path, prodURI, devURI string) error {
	data, err := Template(prodURI, devURI)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	vault "github.com/hashicorp/vault/api"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var noSuchFile = "no such file"
var notFoundIn = "not found in"

func getViper() *viper.Viper {
	v := viper.New()
	// config file is config.yaml
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// If the config location env is set, use that.
	v.SetConfigFile(os.Getenv(ConfigEnv))

	// otherwise, prioritize current path or parent
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	// Lastly, check home dir
	v.AddConfigPath(HomeDir())

	return v
}

// RequireConfig reads the configuration.
// 1. Read in a configuration file based on environment variables and current path.
// 2. If a section is provided, e.g. "forge", then only that section will be treated as root and deserialized.
// 3. Unset fields are filled from defaults, when given.
// 4. If defaults are provided, an error will _not_ be returned if no config is found.
func RequireConfig(section string, cfg *Config, defaults *Config) error {
	v := getViper()
	err := v.ReadInConfig()
	if err != nil {
		msg := strings.ToLower(err.Error())
		if defaults != nil && (strings.Contains(msg, noSuchFile) || strings.Contains(msg, notFoundIn)) {
			cfg.ApplyDefaults(defaults)
			return nil
		} else {
			return fmt.Errorf("fatal error reading config file: %w", err)
		}
	}
	if section != "" {
		// viper does not support partial deserialization so we
		// have to re-serialize and parse again
		asMap := v.GetStringMap(section)
		bz, _ := yaml.Marshal(asMap)
		err = yaml.Unmarshal(bz, cfg)
	} else {
		err = v.Unmarshal(cfg)
	}
	if err != nil {
		return err
	}
	cfg.ApplyDefaults(defaults)
	return nil
}

func newVaultClient(cfg *vault.Config) (VaultLoader, error) {
	cli, err := vault.NewClient(cfg)
	if err != nil {
		return &DefaultVaultLoader{}, err
	}
	return &DefaultVaultLoader{Client: cli}, nil
}

var NewVaultClient = newVaultClient

type DefaultVaultLoader struct {
	*vault.Client
}

var _ VaultLoader = &DefaultVaultLoader{}

func (v *DefaultVaultLoader) LoadSecretData(vaultPath string) (*vault.Secret, error) {
	secret, err := v.Logical().Read(vaultPath)
	if err != nil || secret == nil { // yes, secret can be nil
		return &vault.Secret{}, err
	}
	return secret, nil
}

type VaultLoader interface {
	LoadSecretData(path string) (*vault.Secret, error)
}

// SecretManagerLoader reads a secret version, e.g. "projects/p/secrets/s/versions/latest".
type SecretManagerLoader interface {
	AccessSecretVersion(ctx context.Context, name string) ([]byte, error)
}

type DefaultSecretManagerLoader struct {
	*secretmanager.Client
}

var _ SecretManagerLoader = &DefaultSecretManagerLoader{}

func (l *DefaultSecretManagerLoader) AccessSecretVersion(ctx context.Context, name string) ([]byte, error) {
	defer l.Client.Close()
	resp, err := l.Client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, err
	}
	if resp == nil || resp.Payload == nil {
		return nil, fmt.Errorf("empty payload for secret %s", name)
	}
	return resp.Payload.Data, nil
}

func newSecretManagerClient(ctx context.Context) (SecretManagerLoader, error) {
	// uses application default credentials
	cli, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &DefaultSecretManagerLoader{Client: cli}, nil
}

var NewSecretManagerClient = newSecretManagerClient

// GetSecret returns a secret, e.g. from env variable. Extend as needed.
func GetSecret(uri string) (string, error) {
	value := uri

	splits := strings.Split(value, ":")
	if len(splits) < 2 {
		return "", errors.New("invalid secret source for: ***")
	}

	path := splits[1]
	switch SecretType(splits[0]) {
	case Env:
		return strings.TrimSpace(os.Getenv(path)), nil
	case Raw:
		return strings.Join(splits[1:], ":"), nil
	case File:
		if len(path) > 1 && path[0] == '~' {
			path = strings.Replace(path, "~", os.Getenv("HOME"), 1)
		}
		result, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(result)), nil
	case Vault:
		vaultArgString := strings.Join(splits[1:], ":")
		vaultArgs := strings.Split(vaultArgString, ",")
		if len(vaultArgs) != 2 {
			return "", errors.New("vault secret has 2 comma separated arguments (url,path)")
		}
		// expect VAULT_TOKEN in env
		vaultUrl := vaultArgs[0]
		vaultFullPath := vaultArgs[1]

		cfg := &vault.Config{Address: vaultUrl}
		client, err := NewVaultClient(cfg)
		if err != nil {
			return "", err
		}

		idx := strings.LastIndex(vaultFullPath, "/")
		if idx == -1 || idx == len(vaultFullPath)-1 { // idx shouldn't be the last char
			return "", errors.New("malformed vault secret in config file")
		}
		vaultKey := vaultFullPath[idx+1:]
		vaultPath := vaultFullPath[:idx]

		secret, err := client.LoadSecretData(vaultPath)
		if err != nil {
			return "", err
		}
		data, _ := secret.Data["data"].(map[string]interface{})
		result, _ := data[vaultKey].(string)
		return strings.TrimSpace(result), nil
	case GoogleSecretManager:
		name := strings.Join(splits[1:], ":")
		if !strings.Contains(name, "/versions/") {
			name = name + "/versions/latest"
		}
		ctx := context.Background()
		client, err := NewSecretManagerClient(ctx)
		if err != nil {
			return "", err
		}
		result, err := client.AccessSecretVersion(ctx, name)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(result)), nil
	}
	return "", errors.New("invalid secret source for: ***")
}

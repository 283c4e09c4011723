package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AUTHSESSION_BASEURL.
const EnvPrefix = "AUTHSESSION"

// Load overlays target, a pointer to a struct with mapstructure tags, with
// values from a .env file, AUTHSESSION_* variables and the optional config
// file at path (yaml, json or toml). Fields without a source keep their
// current value.
func Load(path string, target interface{}) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range keys(target) {
		if err := v.BindEnv(key); err != nil {
			return err
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %v: %w", path, err)
		}
	}
	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// keys lists the top level mapstructure keys of target, squashed
// embedded structs included, so that viper consults the environment for
// keys absent from the file.
func keys(target interface{}) []string {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	var result []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, flags, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if field.Anonymous && strings.Contains(flags, "squash") {
			result = append(result, keys(reflect.New(field.Type).Interface())...)
			continue
		}
		if name == "" {
			name = field.Name
		}
		result = append(result, name)
	}
	return result
}

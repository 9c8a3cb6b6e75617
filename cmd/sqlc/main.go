package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"llama_lend/pkg/logger"
)

// sqlc не умеет один конфиг на много пакетов с разным gen.go.out, поэтому
// на каждый query.sql собирается свой временный конфиг из .sqlc.base.yaml.

func packageFor(file string) (name, dir string) {
	dir, _ = filepath.Split(file)
	parts := strings.Split(filepath.Clean(dir), string(os.PathSeparator))
	return parts[len(parts)-1], dir
}

// renderConfig — конфиг sqlc для одного файла запросов. engine переиспользуется:
// package, out и queries перезаписываются на каждом файле.
func renderConfig(engine *viper.Viper, version, file string) ([]byte, error) {
	name, dir := packageFor(file)
	engine.Set("gen.go.package", name)
	engine.Set("gen.go.out", dir)
	engine.Set("queries", file)

	settings := engine.AllSettings()
	delete(settings, "source")

	result := viper.New()
	result.Set("version", version)
	result.Set("sql", []interface{}{settings})

	bs, err := yaml.Marshal(result.AllSettings())
	if err != nil {
		return nil, errors.Wrap(err, "marshal config to yaml")
	}
	return bs, nil
}

func queries(patterns []string, only string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		found, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "glob %s", pattern)
		}
		for _, f := range found {
			if only == "" || strings.Contains(f, only) {
				files = append(files, f)
			}
		}
	}
	return files, nil
}

func generate(content []byte, name string) error {
	path := fmt.Sprintf("sqlc.%s.yaml", name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.Wrap(err, "write sqlc config")
	}
	defer func() {
		_ = os.Remove(path)
	}()

	output, err := exec.Command("sqlc", "generate", "--file", path).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "call sqlc: %s", string(output))
	}
	return nil
}

func run(baseName, only string) error {
	viper.SetConfigName(baseName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrap(err, "read base config")
	}
	patterns := viper.GetStringSlice("sql.0.source")
	if len(patterns) == 0 {
		return errors.New("base config has no sql.0.source")
	}
	files, err := queries(patterns, only)
	if err != nil {
		return err
	}

	engine := viper.Sub("sql.0")
	for i, file := range files {
		content, err := renderConfig(engine, viper.GetString("version"), file)
		if err != nil {
			return err
		}
		if err := generate(content, fmt.Sprint(i)); err != nil {
			return errors.Wrap(err, file)
		}
		logger.Info("%s generated", file)
	}
	logger.Info("done, %d packages", len(files))
	return nil
}

func main() {
	baseName := flag.String("base", ".sqlc.base", "base sqlc config without extension")
	only := flag.String("only", "", "generate only query files whose path contains this")
	flag.Parse()

	if _, err := logger.Init("info"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(*baseName, *only); err != nil {
		logger.Fatal("sqlc: %v", err)
	}
}

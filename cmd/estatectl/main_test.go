/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/suparena/estatesync/config"
	"github.com/suparena/estatesync/models"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{config.EnvBackend, config.EnvTable, config.EnvRegion, config.EnvAccessKey, config.EnvSecretKey, config.EnvEndpoint} {
		t.Setenv(key, "")
	}
	t.Cleanup(func() {
		cfgPath, envFile, backendName, verbose = "", ".env", "", false
		watchCount, watchStatus = 0, ""
		newProperty = models.Property{}
		accountPassword, registerName, registerPhone = "", "", ""
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "estatectl version 0.1.0")
}

func TestWatchSettingsMemory(t *testing.T) {
	out, err := execute(t, "watch", "settings", "--backend", "memory", "--count", "2")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "\n---\n"))

	dec := yaml.NewDecoder(strings.NewReader(out))
	var views []map[string]any
	for {
		var v map[string]any
		if dec.Decode(&v) != nil {
			break
		}
		views = append(views, v)
	}
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Equal(t, "Success", v["kind"])
		value, ok := v["value"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "USD", value["currency"])
	}
}

func TestCreatePropertyMemory(t *testing.T) {
	out, err := execute(t, "property", "create", "--backend", "memory",
		"--title", "Harbor Loft", "--price", "500000", "--share-price", "500", "--shares", "1000")
	require.NoError(t, err)
	assert.Contains(t, out, "kind: Success")
	assert.Contains(t, out, "title: Harbor Loft")
}

func TestCreatePropertyInvalid(t *testing.T) {
	out, err := execute(t, "property", "create", "--backend", "memory", "--title", "Negative", "--price=-1")
	require.Error(t, err)
	assert.Contains(t, out, "kind: Failure")
}

func TestLoginUnknownAccount(t *testing.T) {
	_, err := execute(t, "login", "nobody@example.com", "--password", "secret1", "--backend", "memory")
	require.Error(t, err)
}

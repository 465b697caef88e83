/*
Copyright 2025 FreightPay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/freightpay"},
		Redis:      RedisConfig{Dns: "redis://localhost:6379"},
	}

	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if cnf.ProjectName != "FreightPay Server" {
		t.Errorf("expected default project name, got %q", cnf.ProjectName)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("expected default port %s, got %q", DEFAULT_PORT, cnf.Server.Port)
	}
	if cnf.Allocation.LockTTLSec != DefaultLockTTLSec {
		t.Errorf("expected default lock ttl %d, got %d", DefaultLockTTLSec, cnf.Allocation.LockTTLSec)
	}
	if cnf.Allocation.LockWaitSec != DefaultLockWaitSec {
		t.Errorf("expected default lock wait %d, got %d", DefaultLockWaitSec, cnf.Allocation.LockWaitSec)
	}
}

func TestValidateAndAddDefaultsMissingDataSource(t *testing.T) {
	cnf := &Configuration{
		Redis: RedisConfig{Dns: "redis://localhost:6379"},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("expected data source error, got %v", err)
	}
}

func TestValidateAndAddDefaultsMissingRedis(t *testing.T) {
	cnf := &Configuration{
		DataSource: DataSourceConfig{Dns: "postgres://localhost:5432/freightpay"},
	}

	err := cnf.validateAndAddDefaults()
	if err == nil || err.Error() != "redis DNS is required" {
		t.Errorf("expected redis error, got %v", err)
	}
}

func TestInitConfigFromFile(t *testing.T) {
	content := `{
  "project_name": "FreightPay Test",
  "data_source": {"dns": "postgres://localhost:5432/freightpay"},
  "redis": {"dns": "redis://localhost:6379"},
  "server": {"port": "6001"}
}`
	f, err := os.CreateTemp(t.TempDir(), "freightpay*.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if err := InitConfig(f.Name()); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cnf, err := Fetch()
	if err != nil {
		t.Fatal(err)
	}
	if cnf.ProjectName != "FreightPay Test" {
		t.Errorf("expected project name from file, got %q", cnf.ProjectName)
	}
	if cnf.Server.Port != "6001" {
		t.Errorf("expected port 6001, got %q", cnf.Server.Port)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	content := `{
  "project_name": "From File",
  "data_source": {"dns": "postgres://localhost:5432/freightpay"},
  "redis": {"dns": "redis://localhost:6379"}
}`
	f, err := os.CreateTemp(t.TempDir(), "freightpay*.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FREIGHTPAY_PROJECT_NAME", "From Env")

	if err := InitConfig(f.Name()); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}

	cnf, err := Fetch()
	if err != nil {
		t.Fatal(err)
	}
	if cnf.ProjectName != "From Env" {
		t.Errorf("expected env to override file, got %q", cnf.ProjectName)
	}
}

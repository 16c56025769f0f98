package config

import (
	"os"
	"testing"
)

func TestValidate_InvalidDeletePolicy(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Storage: StorageConfig{Bucket: "docket-files"},
		Catalog: CatalogConfig{DeletePolicy: "purge"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid delete policy")
	}

	expected := `catalog.delete_policy must be "soft" or "hard", got "purge"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidDeletePolicies(t *testing.T) {
	for _, policy := range []string{"soft", "hard"} {
		t.Run("policy="+policy, func(t *testing.T) {
			cfg := Config{
				HTTP: HTTPConfig{Port: 8080},
				Database: DatabaseConfig{
					Addrs: []string{"localhost:6379"},
				},
				Storage: StorageConfig{Bucket: "docket-files"},
				Catalog: CatalogConfig{DeletePolicy: policy},
			}

			err := cfg.Validate()
			if err != nil {
				t.Fatalf("unexpected error for valid policy %q: %v", policy, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Storage: StorageConfig{Bucket: "docket-files"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{},
		},
		Storage: StorageConfig{Bucket: "docket-files"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingBucket(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Catalog: CatalogConfig{DeletePolicy: "soft"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing storage bucket")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Database.KeyPrefix != "docket:" {
		t.Errorf("expected KeyPrefix='docket:', got %q", cfg.Database.KeyPrefix)
	}
	if cfg.Retrieval.DefaultResults != 10 {
		t.Errorf("expected DefaultResults=10, got %d", cfg.Retrieval.DefaultResults)
	}
	if cfg.Catalog.DeletePolicy != "soft" {
		t.Errorf("expected DeletePolicy='soft', got %q", cfg.Catalog.DeletePolicy)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:  DatabaseConfig{ReadinessTimeout: 15, KeyPrefix: "custom:"},
		Retrieval: RetrievalConfig{DefaultResults: 25},
		Catalog:   CatalogConfig{DeletePolicy: "hard"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Database.KeyPrefix)
	}
	if cfg.Retrieval.DefaultResults != 25 {
		t.Errorf("expected DefaultResults=25, got %d", cfg.Retrieval.DefaultResults)
	}
	if cfg.Catalog.DeletePolicy != "hard" {
		t.Errorf("expected DeletePolicy='hard', got %q", cfg.Catalog.DeletePolicy)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("DOCKET_TEST_BUCKET", "bucket-from-env")
	defer os.Unsetenv("DOCKET_TEST_BUCKET")

	in := []byte("bucket: ${DOCKET_TEST_BUCKET}\nregion: ${DOCKET_TEST_REGION:-us-east-1}\n")
	out := string(expandEnvVars(in))

	want := "bucket: bucket-from-env\nregion: us-east-1\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}

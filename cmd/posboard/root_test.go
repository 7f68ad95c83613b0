package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"PosBoard/internal/config"
	"PosBoard/internal/stats"
)

func TestBindFlags_OverrideDefaults(t *testing.T) {
	v := config.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addFlags(fs)
	bindFlags(v, fs)

	if err := fs.Parse([]string{"--port", "3500", "--port-max", "3600", "--storage", "memory", "--kafka-brokers", "a:9092,b:9092"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 3500 || cfg.Server.PortMax != 3600 {
		t.Fatalf("ports=%d..%d", cfg.Server.Port, cfg.Server.PortMax)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("storage=%q", cfg.Storage.Backend)
	}
	if len(cfg.Notify.KafkaBrokers) != 2 {
		t.Fatalf("brokers=%v", cfg.Notify.KafkaBrokers)
	}
	// unset flags keep the config defaults
	if cfg.Storage.OrdersFile != "orders.json" {
		t.Fatalf("orders_file=%q", cfg.Storage.OrdersFile)
	}
}

func TestRebuildStatsCommand(t *testing.T) {
	dir := t.TempDir()
	orders := `[
		{"id":"1","items":[{"name":"Coffee","count":2,"price":50}],"total":100},
		{"id":"2","items":[{"name":"Tea","count":1,"price":40}],"total":40}
	]`
	if err := os.WriteFile(filepath.Join(dir, "orders.json"), []byte(orders), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := `{"items":{"Coffee":{"count":9,"revenue":900}},"totalRevenue":900}`
	if err := os.WriteFile(filepath.Join(dir, "stats.json"), []byte(stale), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCmd()
	cmd.SetArgs([]string{"rebuild-stats", "--data-dir", dir, "--storage", "file", "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "stats.json"))
	if err != nil {
		t.Fatal(err)
	}
	var st stats.Stats
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.TotalRevenue != 140 || st.Items["Coffee"].Count != 2 || st.Items["Tea"].Revenue != 40 {
		t.Fatalf("stats=%+v", st)
	}
}

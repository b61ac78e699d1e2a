package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/prodimg"
	main "github.com/fwojciec/prodimg/cmd/prodimg"
	"github.com/fwojciec/prodimg/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMain returns a Main backed by a temp database file.
func newMain(t *testing.T) *main.Main {
	t.Helper()
	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "prodimg.db")
	return m
}

// seedMachine inserts a machine directly through the sqlite service.
func seedMachine(t *testing.T, dbPath string, machine *prodimg.Machine) {
	t.Helper()
	db := sqlite.NewDB(dbPath)
	require.NoError(t, db.Open())
	defer db.Close()
	require.NoError(t, sqlite.NewMachineService(db).CreateMachine(context.Background(), machine))
}

func TestMain_Run(t *testing.T) {
	t.Parallel()

	t.Run("no command shows help", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), nil, &stdout, &stderr)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no command specified")
	})

	t.Run("help runs without a database", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "resolve")
		assert.Contains(t, stdout.String(), "list")
	})

	t.Run("unknown command", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"bogus"}, &stdout, &stderr)
		require.Error(t, err)
	})
}

func TestCmdList(t *testing.T) {
	t.Parallel()

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"list"}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No machines found.")
	})

	t.Run("lists machines with asset status", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		seedMachine(t, m.DBPath, &prodimg.Machine{Brand: "Bosch", Model: "WAW28740", LocalImagePath: "/machines/1.jpg"})
		seedMachine(t, m.DBPath, &prodimg.Machine{Brand: "Samsung", Model: "WF20DG8650BWU3"})
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"list"}, &stdout, &stderr)
		require.NoError(t, err)

		out := stdout.String()
		assert.Contains(t, out, "Bosch  WAW28740  /machines/1.jpg")
		assert.Contains(t, out, "Samsung  WF20DG8650BWU3  -")
	})

	t.Run("brand filter narrows output", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		seedMachine(t, m.DBPath, &prodimg.Machine{Brand: "Bosch", Model: "WAW28740"})
		seedMachine(t, m.DBPath, &prodimg.Machine{Brand: "Samsung", Model: "WF20DG8650BWU3"})
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"list", "--brand", "sams"}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Samsung")
		assert.NotContains(t, stdout.String(), "Bosch")
	})
}

func TestCmdResolve(t *testing.T) {
	t.Parallel()

	t.Run("requires asset dir", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"resolve"}, &stdout, &stderr)
		require.Error(t, err)
	})

	t.Run("empty database reports nothing to do", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		var stdout, stderr bytes.Buffer

		err := m.Run(context.Background(), []string{"resolve", "--asset-dir", t.TempDir()}, &stdout, &stderr)
		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No machines needing images.")
	})

	t.Run("reset clears recorded paths", func(t *testing.T) {
		t.Parallel()
		m := newMain(t)
		machine := &prodimg.Machine{Brand: "Bosch", Model: "WAW28740", LocalImagePath: "/machines/1.jpg", ImageHash: "deadbeef"}
		seedMachine(t, m.DBPath, machine)
		var stdout, stderr bytes.Buffer

		// No image URL recorded and no lookups wired, so the machine is
		// selected but exhausts the waterfall without network traffic.
		err := m.Run(context.Background(), []string{"resolve", "--asset-dir", t.TempDir(), "--reset"}, &stdout, &stderr)
		require.NoError(t, err)

		db := sqlite.NewDB(m.DBPath)
		require.NoError(t, db.Open())
		defer db.Close()
		got, err := sqlite.NewMachineService(db).FindMachineByID(context.Background(), machine.ID)
		require.NoError(t, err)
		assert.Empty(t, got.LocalImagePath)
		assert.Empty(t, got.ImageHash)
	})
}

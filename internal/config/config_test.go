package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadLocalModeDefaults(t *testing.T) {
	t.Setenv("STORAGE_MODE", "local")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, StorageLocal, cfg.Storage.Mode)
	require.Equal(t, "data", cfg.Storage.DataDir)
	require.Equal(t, "0 20 * * *", cfg.Reporting.SnapshotCron)
	require.Equal(t, "Asia/Dhaka", cfg.Reporting.Timezone)
	require.False(t, cfg.Ledger.StrictAmounts)
}

func TestLoadRemoteModeRequiresMongoURI(t *testing.T) {
	t.Setenv("STORAGE_MODE", "remote")
	t.Setenv("MONGODB_URI", "")

	_, err := Load("")
	require.Error(t, err)

	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, StorageRemote, cfg.Storage.Mode)
	require.Equal(t, "poultrypro", cfg.MongoDB.DBName)
}

func TestLoadRejectsUnknownStorageMode(t *testing.T) {
	t.Setenv("STORAGE_MODE", "s3")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadSheetsSettingsComeAsPair(t *testing.T) {
	t.Setenv("STORAGE_MODE", "local")
	t.Setenv("REPORT_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")

	_, err := Load("")
	require.Error(t, err)

	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "credentials.json")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "sheet-id", cfg.Reporting.SpreadsheetID)
}

func TestLoadStrictAmountsSwitch(t *testing.T) {
	t.Setenv("STORAGE_MODE", "local")
	t.Setenv("STRICT_AMOUNTS", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.Ledger.StrictAmounts)
}

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-tariff/core/tariff"
	"clinic-tariff/internal/errors"
)

// run executes the CLI with an isolated config file
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	if cfgPath == "" {
		cfgPath = filepath.Join(t.TempDir(), "absent.yaml")
	}

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func plain(s string) string {
	return strings.NewReplacer("\u00a0", " ", "\u202f", " ").Replace(s)
}

func TestQuoteJSON(t *testing.T) {
	out, err := run(t, "", "quote", "--format", "json",
		"--period", "12", "--patients", "25000", "--branches", "2", "--messaging", "5", "--marketing", "advanced")
	require.NoError(t, err)

	var q map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, tariff.CurrentName, q["revision"])
	assert.Equal(t, "77700", q["monthly_total"])
	assert.Equal(t, "280800", q["savings"])
}

func TestQuoteCLIReport(t *testing.T) {
	out, err := run(t, "", "quote", "--no-color",
		"--period", "12", "--patients", "25000", "--branches", "2", "--messaging", "5", "--marketing", "advanced")
	require.NoError(t, err)

	out = plain(out)
	assert.Contains(t, out, "932 400 ₽")
	assert.Contains(t, out, "Разложение цены")
}

func TestQuoteNormalizesInput(t *testing.T) {
	out, err := run(t, "", "quote", "--format", "json", "--period", "2", "--patients", "999", "--branches", "0", "--marketing", "gold")
	require.NoError(t, err)

	var q struct {
		Parameters map[string]interface{} `json:"parameters"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.EqualValues(t, 1, q.Parameters["period_months"])
	assert.EqualValues(t, 1000, q.Parameters["patient_base"])
	assert.EqualValues(t, 1, q.Parameters["branches"])
	assert.Equal(t, "base", q.Parameters["marketing"])
}

func TestQuoteUnknownFormat(t *testing.T) {
	_, err := run(t, "", "quote", "--format", "pdf")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotSupported))
}

// trackedEvents runs args with analytics logged as JSON to a file
// and returns the event names in order
func trackedEvents(t *testing.T, args ...string) []string {
	t.Helper()
	dir := t.TempDir()
	logPath := filepath.Join(dir, "events.log")
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := "logging:\n  format: json\n  output: " + logPath + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	_, err := run(t, cfgPath, args...)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["msg"] == "analytics event" {
			names = append(names, entry["event"].(string))
		}
	}
	return names
}

func TestQuoteWithTracking(t *testing.T) {
	names := trackedEvents(t, "quote", "--format", "json", "--track", "--utm", "utm_source=yandex")
	assert.Equal(t, []string{
		"ab_variant_assigned", "ab_variant_assigned",
		"calc_viewed", "funnel_step",
		"calc_param_change",
		"funnel_step",
		"funnel_step", "calc_breakdown_view",
		"calc_submitted",
	}, names)

	assert.Empty(t, trackedEvents(t, "quote", "--format", "json"))

	_, err := run(t, "", "quote", "--track", "--utm", "utm_source=%zz")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

func TestQuoteUsesConfigDefaults(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("output:\n  default_format: json\ntariff:\n  revision: legacy\n"), 0644))

	out, err := run(t, cfgPath, "quote")
	require.NoError(t, err)

	var q map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &q))
	assert.Equal(t, tariff.LegacyName, q["revision"])
}

func TestNormalize(t *testing.T) {
	out, err := run(t, "", "normalize", "--period", "7.5", "--patients", "25400", "--branches", "12", "--messaging", "-3", "--support", " Daily ")
	require.NoError(t, err)

	var p map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &p))
	assert.EqualValues(t, 6, p["period_months"])
	assert.EqualValues(t, 25000, p["patient_base"])
	assert.EqualValues(t, 12, p["branches"])
	assert.EqualValues(t, 0, p["messaging_numbers"])
	assert.Equal(t, "daily", p["support"])

	flags, ok := p["flags"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, flags["big_network"])
	assert.Equal(t, false, flags["big_base"])
}

func TestTariffList(t *testing.T) {
	out, err := run(t, "", "tariff", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, tariff.CurrentName)
	assert.Contains(t, out, tariff.LegacyName)
}

func TestTariffTable(t *testing.T) {
	out, err := run(t, "", "tariff", "--no-color")
	require.NoError(t, err)

	out = plain(out)
	assert.Contains(t, out, "Тариф "+tariff.CurrentName)
	assert.Contains(t, out, "20 900 ₽")
	assert.Contains(t, out, "12,5%")
	assert.Contains(t, out, "Expert")
}

func TestTariffHCLRoundTrip(t *testing.T) {
	out, err := run(t, "", "tariff", "--hcl", "--revision", "legacy")
	require.NoError(t, err)

	rev, err := tariff.Parse([]byte(out), "legacy.hcl")
	require.NoError(t, err)
	assert.Equal(t, tariff.LegacyName, rev.Name)

	path := filepath.Join(t.TempDir(), "tariff.hcl")
	require.NoError(t, os.WriteFile(path, []byte(out), 0644))

	quoted, err := run(t, "", "quote", "--format", "json", "--tariff-file", path)
	require.NoError(t, err)
	var q map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(quoted), &q))
	assert.Equal(t, tariff.LegacyName, q["revision"])
}

func TestTariffUnknownRevision(t *testing.T) {
	_, err := run(t, "", "tariff", "--revision", "2019")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

func TestApply(t *testing.T) {
	out, err := run(t, "", "apply", "--track",
		"--name", "Анна Петрова", "--clinic", "Улыбка", "--phone", "8 912 345-67-89", "--mis", "IDENT",
		"--period", "9", "--patients", "35000", "--marketing", "advanced")
	require.NoError(t, err)

	var s map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, "calculator_apply", s["source"])
	assert.NotEmpty(t, s["id"])

	contact, ok := s["contact"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "+7 912 345 67 89", contact["phone"])
}

func TestApplyWithTracking(t *testing.T) {
	names := trackedEvents(t, "apply", "--track",
		"--name", "Анна Петрова", "--clinic", "Улыбка", "--phone", "+7 912 345 67 89", "--mis", "IDENT")
	require.NotEmpty(t, names)
	assert.Contains(t, names, "apply_submit")
	assert.Equal(t, "ab_result", names[len(names)-1])
}

func TestApplyRejectsInvalidContact(t *testing.T) {
	_, err := run(t, "", "apply", "--name", "А", "--clinic", "Улыбка", "--phone", "123", "--mis", "IDENT")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeInput))
	assert.Contains(t, err.Error(), "full_name")
	assert.Contains(t, err.Error(), "phone")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "clinic-tariff version "+Version+"\n", out)
}

func TestConfigInitAndShow(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "clinic", "config.yaml")

	out, err := run(t, cfgPath, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, cfgPath)
	assert.FileExists(t, cfgPath)

	_, err = run(t, cfgPath, "config", "init")
	require.Error(t, err)

	_, err = run(t, cfgPath, "config", "init", "--force")
	require.NoError(t, err)

	out, err = run(t, cfgPath, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "default_format: cli")
	assert.Contains(t, out, "revision: current")
}

func TestInvalidConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("analytics:\n  b_share: 3\n"), 0644))

	_, err := run(t, cfgPath, "version")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.TypeConfig))
}

package autoat

import (
	"reflect"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/vintcessun/AutoAt-Bot/config"
	"github.com/vintcessun/AutoAt-Bot/utils"
)

func newTestLogger() (utils.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return utils.WrapLogrus(logger), hook
}

func countLevel(hook *test.Hook, level logrus.Level) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			n++
		}
	}
	return n
}

func TestParseAdmins(t *testing.T) {
	got, err := ParseAdmins(" 1, 2 ,,3 ")
	if err != nil {
		t.Fatalf("ParseAdmins: %v", err)
	}
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("admins = %v, want %v", got, want)
	}
}

func TestResolve_MalformedAdminsFallBack(t *testing.T) {
	for _, raw := range []string{"", ",,,", "   ", " , \t, "} {
		logger, hook := newTestLogger()
		cfg := config.DefaultAutoAtConfig()
		cfg.AdminWhitelist = config.LenientOf(raw)

		settings := Resolve(cfg, logger)

		if want := []string{DefaultAdmin}; !reflect.DeepEqual(settings.Admins, want) {
			t.Fatalf("raw %q: admins = %v, want %v", raw, settings.Admins, want)
		}
		if countLevel(hook, logrus.ErrorLevel) != 1 {
			t.Fatalf("raw %q: expected one error log, got %+v", raw, hook.AllEntries())
		}
	}
}

func TestParseMonitorTable_DropsMalformedLinesKeepsOrder(t *testing.T) {
	logger, hook := newTestLogger()
	raw := "100:1,2\nno-separator\n:5\n200:\n\n  300 : 7 , 8,  \r\n100:9"

	got, err := ParseMonitorTable(raw, logger)
	if err != nil {
		t.Fatalf("ParseMonitorTable: %v", err)
	}

	want := MonitorTable{
		{GroupID: "100", Users: []string{"1", "2"}},
		{GroupID: "300", Users: []string{"7", "8"}},
		{GroupID: "100", Users: []string{"9"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("table = %+v, want %+v", got, want)
	}
	if n := countLevel(hook, logrus.WarnLevel); n != 3 {
		t.Fatalf("warnings = %d, want 3", n)
	}
}

func TestParseMonitorTable_SplitsOnFirstSeparator(t *testing.T) {
	logger, _ := newTestLogger()
	got, err := ParseMonitorTable("100:1:2,3", logger)
	if err != nil {
		t.Fatalf("ParseMonitorTable: %v", err)
	}
	if want := []string{"1:2", "3"}; !reflect.DeepEqual(got[0].Users, want) {
		t.Fatalf("users = %v, want %v", got[0].Users, want)
	}
}

func TestResolve_NoWellFormedMonitorLinesFallBack(t *testing.T) {
	for _, raw := range []string{"", "\n\n", "abc", ":1\n2:", " : , "} {
		logger, _ := newTestLogger()
		cfg := config.DefaultAutoAtConfig()
		cfg.MonitorConfig = config.LenientOf(raw)

		settings := Resolve(cfg, logger)

		want := MonitorTable{{GroupID: DefaultGroup, Users: []string{DefaultUser}}}
		if !reflect.DeepEqual(settings.Monitors, want) {
			t.Fatalf("raw %q: monitors = %+v, want %+v", raw, settings.Monitors, want)
		}
	}
}

func TestResolve_Idempotent(t *testing.T) {
	logger, _ := newTestLogger()
	cfg := config.AutoAtConfig{
		MyQQ:               "999",
		EnableReplyMessage: true,
		ReplyMessage:       "hi",
		AdminWhitelist:     config.LenientOf("1,2"),
		MonitorConfig:      config.LenientOf("100:1,2\n200:3"),
	}

	first := Resolve(cfg, logger)
	second := Resolve(cfg, logger)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolve not idempotent: %+v vs %+v", first, second)
	}
	if first.BotID != "999" || !first.Reply.Enabled || first.Reply.Text != "hi" {
		t.Fatalf("unexpected settings: %+v", first)
	}
}

func TestMonitorTable_IsTargetExactMatch(t *testing.T) {
	table := MonitorTable{
		{GroupID: "100", Users: []string{"1"}},
		{GroupID: "100", Users: []string{"2"}},
	}

	cases := []struct {
		group, sender string
		want          bool
	}{
		{"100", "1", true},
		{"100", "2", true},
		{"100", "3", false},
		{"0100", "1", false},
		{"100", "01", false},
		{"200", "1", false},
	}
	for _, c := range cases {
		if got := table.IsTarget(c.group, c.sender); got != c.want {
			t.Errorf("IsTarget(%q, %q) = %v, want %v", c.group, c.sender, got, c.want)
		}
	}
}

func TestResolve_UnsupportedValueTypesFallBack(t *testing.T) {
	logger, hook := newTestLogger()
	cfg := config.DefaultAutoAtConfig()
	cfg.AdminWhitelist = config.Lenient{Invalid: "bool"}
	cfg.MonitorConfig = config.Lenient{Invalid: "[]interface {}"}

	settings := Resolve(cfg, logger)

	if want := []string{DefaultAdmin}; !reflect.DeepEqual(settings.Admins, want) {
		t.Fatalf("admins = %v, want %v", settings.Admins, want)
	}
	want := MonitorTable{{GroupID: DefaultGroup, Users: []string{DefaultUser}}}
	if !reflect.DeepEqual(settings.Monitors, want) {
		t.Fatalf("monitors = %+v, want %+v", settings.Monitors, want)
	}
	if n := countLevel(hook, logrus.ErrorLevel); n != 2 {
		t.Fatalf("error logs = %d, want 2", n)
	}
}

func TestResolve_IntegerWhitelist(t *testing.T) {
	logger, _ := newTestLogger()
	cfg := config.DefaultAutoAtConfig()
	cfg.AdminWhitelist = config.LenientOf("42")

	if got := Resolve(cfg, logger).Admins; !reflect.DeepEqual(got, []string{"42"}) {
		t.Fatalf("admins = %v, want [42]", got)
	}
}

package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
)

func TestDecoderFromFixtures(t *testing.T) {
	fx := loadFixture(t, "bind_mail.json")

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			decoder := NewDecoder[mailSettings](buildOptions(tc)...)
			result, err := decoder.Decode(Context{Prefix: tc.Prefix, Source: tc.Source}, tc.Input)

			if tc.ExpectErr != "" {
				if err == nil {
					t.Fatalf("expected error %q, got nil", tc.ExpectErr)
				}
				if !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if !reflect.DeepEqual(tc.Expect, result) {
				t.Fatalf("decoded settings mismatch:\nwant: %#v\n got: %#v", tc.Expect, result)
			}
		})
	}
}

func TestDecodeNilValues(t *testing.T) {
	if _, err := Decode[mailSettings](Context{Source: "store"}, nil); !errors.Is(err, ErrNilValues) {
		t.Fatalf("expected ErrNilValues, got %v", err)
	}
}

func TestSelect(t *testing.T) {
	values := map[string]string{"a.b": "1", "a.c.d": "2", "ab": "3", "a": "4"}
	want := map[string]string{"b": "1", "c.d": "2"}
	if got := Select(values, "a"); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := Select(values, ""); !reflect.DeepEqual(got, values) {
		t.Fatalf("expected a copy, got %v", got)
	}
}

func buildOptions(tc fixtureCase) []DecoderOption[mailSettings] {
	options := []DecoderOption[mailSettings]{}
	for _, optName := range tc.Options {
		switch optName {
		case "known_fields":
			options = append(options, WithKnownFields[mailSettings]())
		}
	}
	for _, hookName := range tc.PreHooks {
		switch hookName {
		case "quiet_hours_split":
			options = append(options, WithPreHook[mailSettings](quietHoursPreHook))
		}
	}
	for _, hookName := range tc.PostHooks {
		switch hookName {
		case "ensure_tag":
			options = append(options, WithPostHook[mailSettings](ensureTagPostHook))
		}
	}
	if tc.CustomDecoder == "dsn" {
		options = append(options, WithCustomDecoder[mailSettings](dsnDecoder))
	}
	return options
}

func quietHoursPreHook(_ Context, values map[string]string) (map[string]string, error) {
	value, ok := values["quiet"]
	if !ok || value == "" {
		return values, nil
	}
	start, end, ok := strings.Cut(value, "-")
	if !ok {
		return nil, fmt.Errorf("invalid quiet hours %q", value)
	}
	delete(values, "quiet")
	values["quietHours.start"] = strings.TrimSpace(start)
	values["quietHours.end"] = strings.TrimSpace(end)
	return values, nil
}

func ensureTagPostHook(ctx Context, settings *mailSettings) error {
	if settings == nil {
		return errors.New("settings are nil")
	}
	if len(settings.Tags) == 0 {
		settings.Tags = []string{ctx.Source + ":" + ctx.Prefix}
	}
	return nil
}

func dsnDecoder(_ Context, values map[string]string) (mailSettings, error) {
	var out mailSettings
	rest, ok := strings.CutPrefix(values["dsn"], "smtp://")
	if !ok {
		return out, fmt.Errorf("unsupported dsn %q", values["dsn"])
	}
	host, portText, _ := strings.Cut(rest, ":")
	port, err := strconv.Atoi(portText)
	if err != nil {
		return out, err
	}
	out.SMTP = smtpSettings{Host: host, Port: port}
	return out, nil
}

type fixture struct {
	Description string        `json:"description"`
	Cases       []fixtureCase `json:"cases"`
}

type fixtureCase struct {
	Name          string            `json:"name"`
	Source        string            `json:"source"`
	Prefix        string            `json:"prefix"`
	Input         map[string]string `json:"input"`
	Expect        mailSettings      `json:"expect"`
	ExpectErr     string            `json:"expectErr"`
	PreHooks      []string          `json:"preHooks"`
	PostHooks     []string          `json:"postHooks"`
	Options       []string          `json:"options"`
	CustomDecoder string            `json:"customDecoder"`
}

type mailSettings struct {
	Enabled    bool         `json:"enabled" yaml:"enabled"`
	SMTP       smtpSettings `json:"smtp" yaml:"smtp"`
	QuietHours quietHours   `json:"quietHours" yaml:"quietHours"`
	Signature  string       `json:"signature" yaml:"signature"`
	Tags       []string     `json:"tags" yaml:"tags"`
}

type smtpSettings struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Password string `json:"password" yaml:"password"`
}

type quietHours struct {
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read bind fixture %q: %v", name, err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal bind fixture %q: %v", name, err)
	}
	return fx
}

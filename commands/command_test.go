package commands

import (
	"flag"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/wwp-bim/acc-docs-sync/config"
)

func TestParse(t *testing.T) {
	files := Files{}
	sync := Sync{}
	cli := []Command{&VersionCmd, &files, &sync}
	help := NewHelp(APP, cli)

	tests := []struct {
		args     []string
		expected Command
	}{
		{[]string{}, nil},
		{[]string{"version"}, &VersionCmd},
		{[]string{"help", "sync"}, help},
		{[]string{"files", "--url", "https://acc.autodesk.com/docs/files/projects/b.1?folderUrn=urn%3Af"}, &files},
		{[]string{"sync", "--project", "b.1", "--folder", "urn:f", "--workbook", "descriptions.xlsx", "--dryrun"}, &sync},
	}

	for _, test := range tests {
		if err := flag.CommandLine.Parse(test.args); err != nil {
			t.Fatalf("%v", err)
		}

		cmd, err := Parse(cli, help)
		if err != nil {
			t.Fatalf("Unexpected error parsing %v (%v)", test.args, err)
		}

		if cmd != test.expected {
			t.Errorf("Incorrect command for %v\n   expected: %v\n   got:      %v", test.args, test.expected, cmd)
		}
	}

	if files.url != "https://acc.autodesk.com/docs/files/projects/b.1?folderUrn=urn%3Af" {
		t.Errorf("Incorrect --url: %v", files.url)
	}

	if sync.project != "b.1" || sync.folder != "urn:f" || sync.workbook != "descriptions.xlsx" || !sync.dryrun {
		t.Errorf("Incorrect sync options: %+v", sync)
	}

	flag.CommandLine.Parse([]string{"upload-acl"})
	if _, err := Parse(cli, help); err == nil {
		t.Errorf("Expected error for unknown command")
	}
}

func TestTargetValidate(t *testing.T) {
	tests := []struct {
		target target
		valid  bool
	}{
		{target{}, true},
		{target{url: "https://acc.autodesk.com/docs/files/projects/b.1?folderUrn=urn%3Af"}, true},
		{target{project: "b.1", folder: "urn:f"}, true},
		{target{project: "b.1"}, false},
		{target{folder: "urn:f"}, false},
		{target{url: "https://acc.autodesk.com/docs/files/projects/b.1?folderUrn=urn%3Af", project: "b.2"}, true},
	}

	for _, test := range tests {
		if err := test.target.validate(); (err == nil) != test.valid {
			t.Errorf("Incorrect validation for %+v\n   expected: %v\n   got:      %v", test.target, test.valid, err)
		}
	}
}

func TestSyncExcludedTypes(t *testing.T) {
	cmd := Sync{exclude: " items:autodesk.bim360:C4RModel, ,items:autodesk.bim360:Document "}
	cfg := config.Config{ExcludedTypes: []string{"items:autodesk.bim360:C4RModel"}}

	cmd.configure(&cfg)

	expected := []string{"items:autodesk.bim360:C4RModel", "items:autodesk.bim360:Document"}
	if !reflect.DeepEqual(cfg.ExcludedTypes, expected) {
		t.Errorf("Incorrect excluded types\n   expected: %v\n   got:      %v", expected, cfg.ExcludedTypes)
	}

	cmd = Sync{}
	cmd.configure(&cfg)

	if !reflect.DeepEqual(cfg.ExcludedTypes, expected) {
		t.Errorf("Expected excluded types to be unchanged without --exclude-type, got %v", cfg.ExcludedTypes)
	}
}

func TestTokensFile(t *testing.T) {
	workdir := filepath.Join("var", "acc-docs-sync")
	expected := filepath.Join("var", "acc-docs-sync", ".google", "credentials.sheets")

	if v := tokensFile(workdir, filepath.Join("etc", ".google", "credentials.json")); v != expected {
		t.Errorf("Incorrect tokens file\n   expected: %v\n   got:      %v", expected, v)
	}
}

func TestSaveToken(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".google", "credentials.sheets")
	token := oauth2.Token{
		AccessToken:  "ya29.access",
		TokenType:    "Bearer",
		RefreshToken: "1//refresh",
		Expiry:       time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC),
	}

	if err := saveToken(file, &token); err != nil {
		t.Fatalf("Unexpected error saving token (%v)", err)
	}

	saved, err := tokenFromFile(file)
	if err != nil {
		t.Fatalf("Unexpected error reading token (%v)", err)
	}

	if saved.AccessToken != token.AccessToken || saved.RefreshToken != token.RefreshToken || !saved.Expiry.Equal(token.Expiry) {
		t.Errorf("Incorrect token\n   expected: %+v\n   got:      %+v", token, *saved)
	}

	if _, err := tokenFromFile(filepath.Join(t.TempDir(), "missing.sheets")); err == nil {
		t.Errorf("Expected error reading missing tokens file")
	}
}

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const SHEETS = "https://www.googleapis.com/auth/spreadsheets.readonly"

func googleConfig(credentials string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	return google.ConfigFromJSON(b, SHEETS)
}

// tokensFile returns the file for the Google Sheets tokens issued for a credentials
// file, e.g. <workdir>/.google/credentials.sheets
func tokensFile(workdir, credentials string) string {
	_, file := filepath.Split(credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(workdir, ".google", fmt.Sprintf("%s.sheets", name))
}

// authorize returns an HTTP client for the Google Sheets API using the tokens saved
// by the 'authorise' command. The client refreshes the access token as required.
func authorize(ctx context.Context, credentials, tokens string) (*http.Client, error) {
	if strings.TrimSpace(credentials) == "" {
		return nil, fmt.Errorf("no Google credentials file")
	}

	config, err := googleConfig(credentials)
	if err != nil {
		return nil, err
	}

	token, err := tokenFromFile(tokens)
	if err != nil {
		return nil, fmt.Errorf("not authorised for Google Sheets - run '%v authorise' (%v)", APP, err)
	}

	return config.Client(ctx, token), nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := oauth2.Token{}
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, err
	}

	return &token, nil
}

func saveToken(file string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}

	f, err := os.OpenFile(file, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to save Google Sheets tokens (%v)", err)
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/scoutline/scout-cli/internal/browser"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the browser session",
	Long:  "Opens the site, signs in with SCOUT_SITE_LOGIN / SCOUT_SITE_PASSWORD and persists the session state so later runs skip the login form.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.Site.Login == "" || cfg.Site.Password == "" {
			return eris.New("login: set SCOUT_SITE_LOGIN and SCOUT_SITE_PASSWORD")
		}

		headed, _ := cmd.Flags().GetBool("headed")
		bcfg := cfg.Browser
		if headed {
			bcfg.Headless = false
		}

		session, err := browser.NewSession(bcfg, cfg.Site.BaseURL)
		if err != nil {
			return err
		}
		defer session.Close()

		if err := session.Login(cmd.Context(), cfg.Site.Login, cfg.Site.Password); err != nil {
			return err
		}

		fmt.Printf("Logged in. Session saved to %s\n", cfg.Browser.StatePath)
		return nil
	},
}

func init() {
	loginCmd.Flags().Bool("headed", false, "show the browser window (useful when a captcha appears)")
	rootCmd.AddCommand(loginCmd)
}

// Package cmd contains the wallet commands.
package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/utxochain/business/web/errs"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	nodeURL     string
)

const keyExtension = ".ecdsa"

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Name of the private key file.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
}

var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "A simple utxo chain wallet",
	SilenceUsage: true,
}

// Execute runs the wallet command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	name := accountName
	if !strings.HasSuffix(name, keyExtension) {
		name += keyExtension
	}

	return filepath.Join(accountPath, name)
}

// decode reads the node response into v, turning an error document into an
// error value.
func decode(resp *http.Response, v any) error {
	if resp.StatusCode != http.StatusOK {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("node status %d", resp.StatusCode)
		}
		return fmt.Errorf("node status %d: %s", resp.StatusCode, er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

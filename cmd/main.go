/*
Copyright 2025 FreightPay Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	freightpay "github.com/freightpay/freightpay"
	"github.com/freightpay/freightpay/config"
	"github.com/freightpay/freightpay/database"
)

// freightpayCli represents the CLI application, encapsulating the root Cobra command.
type freightpayCli struct {
	cmd *cobra.Command
}

// appInstance holds the engine instance and its configuration.
type appInstance struct {
	engine *freightpay.Freightpay
	cnf    *config.Configuration
}

// recoverPanic handles any panics during program execution and logs the error.
func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun sets up the configuration and initializes the engine before running
// any command.
func preRun(app *appInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("freightpay.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		engine, err := setupEngine(cnf)
		if err != nil {
			return err
		}

		app.engine = engine
		app.cnf = cnf
		return nil
	}
}

// setupEngine wires the datasource into a new engine instance.
func setupEngine(cnf *config.Configuration) (*freightpay.Freightpay, error) {
	db, err := database.NewDataSource(cnf)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}
	return freightpay.NewFreightpay(db)
}

// NewCLI creates the root command and registers subcommands.
func NewCLI() *freightpayCli {
	var app appInstance

	var rootCmd = &cobra.Command{
		Use:   "freightpay",
		Short: "Payment reconciliation & allocation engine",
		Run: func(cmd *cobra.Command, args []string) {
			if err := cmd.Help(); err != nil {
				log.Println(err)
			}
		},
	}
	rootCmd.PersistentPreRunE = preRun(&app)

	rootCmd.AddCommand(serverCommands(&app))
	rootCmd.AddCommand(migrateCommands())

	return &freightpayCli{cmd: rootCmd}
}

func (c freightpayCli) executeCli() error {
	return c.cmd.Execute()
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	if err := cli.executeCli(); err != nil {
		log.Fatal(err)
	}
}

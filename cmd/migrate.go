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
	"log"

	"github.com/spf13/cobra"

	"github.com/freightpay/freightpay/config"
	"github.com/freightpay/freightpay/database"
)

func migrateCommands() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "create the engine's tables",
		Run: func(cmd *cobra.Command, args []string) {
			cnf, err := config.Fetch()
			if err != nil {
				log.Fatal(err)
			}
			db, err := database.GetDBConnection(cnf)
			if err != nil {
				log.Fatal(err)
			}
			if err := database.Migrate(db.Conn); err != nil {
				log.Fatal(err)
			}
			log.Println("migration complete")
		},
	}
	return cmd
}

/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"trust-reconciliation-go/internal/common"
	"trust-reconciliation-go/internal/config"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	dateFlag := flag.String("date", time.Now().UTC().Format(time.DateOnly), "Calendar date of the closing balance (YYYY-MM-DD)")
	balanceFlag := flag.String("balance", "", "Trust account closing balance, e.g. 50000.00")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	if *balanceFlag == "" {
		zap.L().Fatal("Missing required -balance flag")
	}

	date, err := time.ParseInLocation(time.DateOnly, *dateFlag, time.UTC)
	if err != nil {
		zap.L().Fatal("Invalid -date, expected YYYY-MM-DD", zap.Error(err))
	}

	balance, err := decimal.NewFromString(*balanceFlag)
	if err != nil {
		zap.L().Fatal("Invalid -balance", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbService, err := common.InitializeDatabaseOnly(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer dbService.Close()

	snapshot, err := dbService.PostClosingBalance(ctx, date, balance)
	if err != nil {
		zap.L().Fatal("Failed to post closing balance", zap.Error(err))
	}

	common.PrintHeader("Trust Account Closing Balance", common.DefaultWidth)
	common.PrintField("Date", snapshot.Date.Format(time.DateOnly))
	common.PrintField("Closing balance", snapshot.ClosingBalance.String())
	common.PrintField("Status", string(snapshot.Status))
	common.PrintFooter("Balance posted", common.DefaultWidth)
}

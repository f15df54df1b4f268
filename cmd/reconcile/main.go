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
	"os"
	"time"

	"trust-reconciliation-go/internal/common"
	"trust-reconciliation-go/internal/config"
	"trust-reconciliation-go/internal/recon"

	"go.uber.org/zap"
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	asOf := time.Now().UTC()

	common.PrintHeader("Trust Account Reconciliation", common.DefaultWidth)
	common.PrintField("Date", asOf.Format(time.DateOnly))

	outcome, err := services.Runner.RunDaily(ctx, asOf)
	if err != nil {
		zap.L().Fatal("Reconciliation run could not start", zap.Error(err))
	}

	common.PrintField("Outcome", string(outcome.Status))
	if outcome.Reason != "" {
		common.PrintField("Reason", outcome.Reason)
	}
	if outcome.Result != nil {
		common.PrintField("Trust balance", outcome.Result.TrustBalance.String())
		common.PrintField("E-money liabilities", outcome.Result.Liabilities.String())
		common.PrintField("Discrepancy", outcome.Result.Discrepancy.String())
		common.PrintField("Status", string(outcome.Result.Status))
	}

	switch outcome.Status {
	case recon.RunCompleted, recon.RunPartialSuccess:
		common.PrintFooter("Reconciliation recorded", common.DefaultWidth)
	default:
		common.PrintFooter("Reconciliation NOT recorded", common.DefaultWidth)
		os.Exit(1)
	}
}

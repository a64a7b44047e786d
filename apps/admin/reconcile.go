package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/hostel/apps/api/echo"
	"github.com/trezcool/hostel/core/user"
)

// reconcile repairs the room counters and prints the JSON report.
func (cli *commandLine) reconcile(ctx context.Context, dryRun bool) error {
	report, err := cli.occSvc.Reconcile(ctx, dryRun)
	if err != nil {
		return errors.Wrap(err, "reconciling room occupancy")
	}

	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// token prints a signed access token for p.
func (cli *commandLine) token(p user.Principal, ttl time.Duration) error {
	issuer := cli.conf.TokenIssuer
	if issuer == "" {
		issuer = cli.conf.AppName
	}
	token, err := echoapi.GenerateToken(cli.conf.SecretKey, echoapi.NewClaims(p, issuer, ttl))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.out, token)
	return err
}

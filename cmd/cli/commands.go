package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/assetvault/internal/infrastructure/auth"
)

func vaultCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Vault-wide aggregates",
	}

	get := func(use, short, path string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, opts, http.MethodGet, path, nil)
			},
		}
	}

	cmd.AddCommand(
		get("tvl", "Show the total value locked in USD", "/api/v1/vault/tvl"),
		get("capacity", "Show the remaining deposit capacity", "/api/v1/vault/capacity"),
		get("status", "Show whether the vault is paused", "/api/v1/vault/status"),
		get("reconcile", "Check totals against user balances", "/api/v1/vault/reconciliation"),
	)
	return cmd
}

func assetsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assets",
		Short: "Asset registry operations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, "/api/v1/assets", nil)
		},
	}

	price := &cobra.Command{
		Use:   "price <asset-id>",
		Short: "Show the validated price of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, "/api/v1/assets/"+url.PathEscape(args[0])+"/price", nil)
		},
	}

	var decimals uint8
	var feed string
	add := &cobra.Command{
		Use:   "add <asset-id>",
		Short: "Register a new asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/api/v1/assets", map[string]any{
				"asset_id":        args[0],
				"native_decimals": decimals,
				"price_feed":      feed,
			})
		},
	}
	add.Flags().Uint8Var(&decimals, "decimals", 18, "Native decimals of the asset")
	add.Flags().StringVar(&feed, "feed", "", "Price feed reference")
	_ = add.MarkFlagRequired("feed")

	setStatus := func(use string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <asset-id>",
			Short: "Mark an asset " + use + "d",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, opts, http.MethodPut, "/api/v1/assets/"+url.PathEscape(args[0])+"/status",
					map[string]bool{"active": active})
			},
		}
	}

	cmd.AddCommand(list, price, add, setStatus("activate", true), setStatus("deactivate", false))
	return cmd
}

func balancesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balances <user> [asset-id]",
		Short: "Show a user's vault balances",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/users/" + url.PathEscape(args[0]) + "/balances"
			if len(args) == 2 {
				path += "/" + url.PathEscape(args[1])
			}
			return call(cmd, opts, http.MethodGet, path, nil)
		},
	}
}

func historyCmd(opts *options) *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "history <user>",
		Short: "Show a user's deposits and withdrawals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			q.Set("limit", strconv.Itoa(limit))
			q.Set("offset", strconv.Itoa(offset))
			return call(cmd, opts, http.MethodGet, "/api/v1/users/"+url.PathEscape(args[0])+"/transactions?"+q.Encode(), nil)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Records to skip")
	return cmd
}

func movementCmd(opts *options, use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <asset-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			return call(cmd, opts, http.MethodPost, path, map[string]any{
				"asset_id": args[0],
				"amount":   amount,
			})
		},
	}
}

func depositCmd(opts *options) *cobra.Command {
	return movementCmd(opts, "deposit", "Deposit an amount in the asset's native units", "/api/v1/deposits")
}

func withdrawCmd(opts *options) *cobra.Command {
	return movementCmd(opts, "withdraw", "Withdraw an amount in canonical units", "/api/v1/withdrawals")
}

func adminCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Emergency and role management",
	}

	post := func(use, short, path string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, opts, http.MethodPost, path, nil)
			},
		}
	}

	role := func(use, short, path string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <principal> <role>",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(cmd, opts, http.MethodPost, path, map[string]string{
					"principal": args[0],
					"role":      args[1],
				})
			},
		}
	}

	renounce := &cobra.Command{
		Use:   "renounce <role>",
		Short: "Give up a role held by the caller",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodPost, "/api/v1/admin/roles/renounce", map[string]string{"role": args[0]})
		},
	}

	cmd.AddCommand(
		post("pause", "Halt deposits and withdrawals", "/api/v1/admin/pause"),
		post("unpause", "Resume deposits and withdrawals", "/api/v1/admin/unpause"),
		role("grant", "Grant a role", "/api/v1/admin/roles/grant"),
		role("revoke", "Revoke a role", "/api/v1/admin/roles/revoke"),
		renounce,
	)
	return cmd
}

func rolesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roles <principal>",
		Short: "List the roles a principal holds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(cmd, opts, http.MethodGet, "/api/v1/roles/"+url.PathEscape(args[0]), nil)
		},
	}
}

func tokenCmd() *cobra.Command {
	var secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <principal>",
		Short: "Mint a bearer token for a principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET is required")
			}
			token, err := auth.NewJWTManager(secret, ttl).Generate(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", ""), "Signing secret shared with the server")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

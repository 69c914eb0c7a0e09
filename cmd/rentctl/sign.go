package main

import (
	"fmt"
	"os"

	"github.com/rentnest/marketplace-backend/pkg/razorpay"
	"github.com/spf13/cobra"
)

// signCmd produces the checkout signature for a dev order so /payments/verify
// can be exercised without the hosted checkout.
func signCmd() *cobra.Command {
	var secret, orderID, paymentID string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute the payment signature for an order and payment id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("RAZORPAY_KEY_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("RAZORPAY_KEY_SECRET is not set and --secret was not provided")
			}
			if orderID == "" || paymentID == "" {
				return fmt.Errorf("--order and --payment are required")
			}

			fmt.Fprintln(cmd.OutOrStdout(), razorpay.Signature(secret, orderID, paymentID))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Gateway key secret (defaults to RAZORPAY_KEY_SECRET)")
	cmd.Flags().StringVar(&orderID, "order", "", "Order id")
	cmd.Flags().StringVar(&paymentID, "payment", "", "Payment id")
	return cmd
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/estatesync/repository"
)

var (
	accountPassword string
	registerName    string
	registerPhone   string
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in and print the profile",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		return follow(cmd.Context(), cmd.OutOrStdout(), s.client.Auth().Login(args[0], accountPassword), 0, userDoc)
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register [email]",
	Short: "Create an account and print the new profile",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		input := repository.RegisterInput{
			Name:     registerName,
			Email:    args[0],
			Phone:    registerPhone,
			Password: accountPassword,
		}
		return follow(cmd.Context(), cmd.OutOrStdout(), s.client.Auth().Register(input), 0, userDoc)
	}),
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVarP(&accountPassword, "password", "p", "", "Account password")
		_ = c.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.Flags().StringVar(&registerPhone, "phone", "", "Phone number")
	_ = registerCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
}

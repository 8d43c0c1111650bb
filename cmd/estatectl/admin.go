/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/estatesync/models"
)

var newProperty models.Property

var propertyCmd = &cobra.Command{
	Use:   "property",
	Short: "Manage properties",
}

var propertyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a property listing",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
		env := s.client.Admin().CreateProperty(cmd.Context(), newProperty)
		if err := printEnvelope(cmd.OutOrStdout(), env, func(p models.Property) any { return p.ToDocument().Data }); err != nil {
			return err
		}
		return envelopeErr(env.IsFailure(), env.Message())
	}),
}

var propertyDeleteCmd = &cobra.Command{
	Use:   "delete [property-id]",
	Short: "Delete a property listing",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		env := s.client.Admin().DeleteProperty(cmd.Context(), args[0])
		if err := printEnvelope(cmd.OutOrStdout(), env, func(id string) any { return id }); err != nil {
			return err
		}
		return envelopeErr(env.IsFailure(), env.Message())
	}),
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user profiles",
}

var userRoleCmd = &cobra.Command{
	Use:   "role [user-id] [investor|admin]",
	Short: "Change the role of a user",
	Args:  cobra.ExactArgs(2),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		env := s.client.Admin().SetUserRole(cmd.Context(), args[0], models.Role(args[1]))
		if err := printEnvelope(cmd.OutOrStdout(), env, func(id string) any { return id }); err != nil {
			return err
		}
		return envelopeErr(env.IsFailure(), env.Message())
	}),
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete [user-id]",
	Short: "Delete a user profile",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		env := s.client.Admin().DeleteUser(cmd.Context(), args[0])
		if err := printEnvelope(cmd.OutOrStdout(), env, func(id string) any { return id }); err != nil {
			return err
		}
		return envelopeErr(env.IsFailure(), env.Message())
	}),
}

func init() {
	f := propertyCreateCmd.Flags()
	f.StringVar(&newProperty.ID, "id", "", "Property id (generated when empty)")
	f.StringVar(&newProperty.Title, "title", "", "Listing title")
	f.StringVar(&newProperty.Description, "description", "", "Listing description")
	f.StringVar(&newProperty.Location, "location", "", "Location")
	f.Float64Var(&newProperty.Price, "price", 0, "Total price")
	f.Float64Var(&newProperty.SharePrice, "share-price", 0, "Price of one share")
	f.IntVar(&newProperty.TotalShares, "shares", 0, "Number of shares")
	f.StringSliceVar(&newProperty.ImageURLs, "image", nil, "Image URL (repeatable)")
	_ = propertyCreateCmd.MarkFlagRequired("title")

	propertyCmd.AddCommand(propertyCreateCmd)
	propertyCmd.AddCommand(propertyDeleteCmd)
	userCmd.AddCommand(userRoleCmd)
	userCmd.AddCommand(userDeleteCmd)
	rootCmd.AddCommand(propertyCmd)
	rootCmd.AddCommand(userCmd)
}

func envelopeErr(failed bool, message string) error {
	if failed {
		return fmt.Errorf("%s", message)
	}
	return nil
}

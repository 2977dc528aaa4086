// =============================================================================
// Genset Invoicer - Company Command
// =============================================================================
//
// COMMAND USAGE:
//   invoicer company show
//   invoicer company set [--name n] [--address a] ... [--logo file]
//
// Only the flags given are changed; every other field keeps its value.
// Image flags take a file path or a data URL. An empty value removes the
// image.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nilefleet/genset-invoicer/internal/render"
	"github.com/nilefleet/genset-invoicer/internal/types"
)

// companyEdit holds the raw flag values of 'company set'.
var companyEdit types.CompanyProfile

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show or edit the company profile printed on documents",
}

var companyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the company profile as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCompany(cmd, app.session.Company())
	},
}

var companySetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change fields of the company profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.NFlag() == 0 {
			return fmt.Errorf("nothing to change; see 'invoicer company set --help'")
		}

		for _, name := range []string{"logo", "signature", "watermark"} {
			if !flags.Changed(name) {
				continue
			}
			ref, _ := flags.GetString(name)
			if ref == "" {
				continue
			}
			if _, err := render.ImageURL(ref); err != nil {
				return fmt.Errorf("--%s: %w", name, err)
			}
		}
		if flags.Changed("sig-scale") && companyEdit.SignatureScale <= 0 {
			return fmt.Errorf("--sig-scale must be greater than 0")
		}

		updated := app.session.UpdateCompany(func(p *types.CompanyProfile) {
			str := map[string]*string{
				"name":           &p.Name,
				"sub-name":       &p.SubName,
				"address":        &p.Address,
				"email":          &p.Email,
				"phone":          &p.Phone,
				"auth-name":      &p.AuthName,
				"auth-job-title": &p.AuthJobTitle,
				"auth-phone":     &p.AuthPhone,
				"auth-email":     &p.AuthEmail,
				"logo":           &p.Logo,
				"signature":      &p.Signature,
				"watermark":      &p.Watermark,
			}
			for name, field := range str {
				if flags.Changed(name) {
					*field, _ = flags.GetString(name)
				}
			}
			if flags.Changed("sig-x") {
				p.SignatureXOffset = companyEdit.SignatureXOffset
			}
			if flags.Changed("sig-y") {
				p.SignatureYOffset = companyEdit.SignatureYOffset
			}
			if flags.Changed("sig-scale") {
				p.SignatureScale = companyEdit.SignatureScale
			}
		})

		if err := app.save(); err != nil {
			return err
		}
		return printCompany(cmd, updated)
	},
}

func init() {
	rootCmd.AddCommand(companyCmd)
	companyCmd.AddCommand(companyShowCmd)
	companyCmd.AddCommand(companySetCmd)

	f := companySetCmd.Flags()
	f.StringVar(&companyEdit.Name, "name", "", "Company name")
	f.StringVar(&companyEdit.SubName, "sub-name", "", "Line printed under the company name")
	f.StringVar(&companyEdit.Address, "address", "", "Postal address")
	f.StringVar(&companyEdit.Email, "email", "", "Billing e-mail")
	f.StringVar(&companyEdit.Phone, "phone", "", "Billing phone")
	f.StringVar(&companyEdit.AuthName, "auth-name", "", "Name of the signing person")
	f.StringVar(&companyEdit.AuthJobTitle, "auth-job-title", "", "Job title of the signing person")
	f.StringVar(&companyEdit.AuthPhone, "auth-phone", "", "Phone of the signing person")
	f.StringVar(&companyEdit.AuthEmail, "auth-email", "", "E-mail of the signing person")
	f.StringVar(&companyEdit.Logo, "logo", "", "Logo image (file path or data URL)")
	f.StringVar(&companyEdit.Signature, "signature", "", "Signature image (file path or data URL)")
	f.StringVar(&companyEdit.Watermark, "watermark", "", "Watermark image (file path or data URL)")
	f.Float64Var(&companyEdit.SignatureXOffset, "sig-x", 0, "Signature horizontal offset in pixels")
	f.Float64Var(&companyEdit.SignatureYOffset, "sig-y", 0, "Signature vertical offset in pixels")
	f.Float64Var(&companyEdit.SignatureScale, "sig-scale", 1, "Signature scale factor")
}

func printCompany(cmd *cobra.Command, p types.CompanyProfile) error {
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode company profile: %w", err)
	}
	return enc.Close()
}

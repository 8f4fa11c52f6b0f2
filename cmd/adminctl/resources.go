package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Glenferdinza/sporton/internal/client"
	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
	trxuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

// Banks

func (a *adminCLI) listBanks(ctx context.Context) error {
	banks, err := a.client.ListBanks(ctx)
	if err != nil {
		return a.fail("load banks", err)
	}
	a.table("ID\tBANK\tACCOUNT NUMBER\tACCOUNT NAME", func(w io.Writer) {
		for _, b := range banks {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", b.ID, b.BankName, b.AccountNumber, b.AccountName)
		}
	})
	return nil
}

func (a *adminCLI) banksCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "banks", Short: "Manage payout bank accounts"}

	var in bankuc.CreateInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a bank account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := a.client.CreateBank(cmd.Context(), in)
			return a.after(cmd.Context(), err, "create bank", "bank created", a.listBanks)
		},
	}
	bankFlags(create, &in)

	var patch bankuc.CreateInput
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a bank account; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur, err := a.client.GetBank(ctx, args[0])
			if err != nil {
				return a.fail("load bank", err)
			}
			body := bankuc.UpdateInput{BankName: &cur.BankName, AccountNumber: &cur.AccountNumber, AccountName: &cur.AccountName}
			if cmd.Flags().Changed("bank-name") {
				body.BankName = &patch.BankName
			}
			if cmd.Flags().Changed("account-number") {
				body.AccountNumber = &patch.AccountNumber
			}
			if cmd.Flags().Changed("account-name") {
				body.AccountName = &patch.AccountName
			}
			_, err = a.client.UpdateBank(ctx, args[0], body)
			return a.after(ctx, err, "update bank", "bank updated", a.listBanks)
		},
	}
	bankFlags(update, &patch)

	cmd.AddCommand(
		listCmd("banks", a.listBanks),
		create,
		update,
		a.deleteCmd("bank", func(ctx context.Context, id string) error { return a.client.DeleteBank(ctx, id) }, a.listBanks),
	)
	return cmd
}

func bankFlags(cmd *cobra.Command, in *bankuc.CreateInput) {
	cmd.Flags().StringVar(&in.BankName, "bank-name", "", "bank name, e.g. BCA")
	cmd.Flags().StringVar(&in.AccountNumber, "account-number", "", "account number")
	cmd.Flags().StringVar(&in.AccountName, "account-name", "", "account holder name")
}

// Categories

func (a *adminCLI) listCategories(ctx context.Context) error {
	cats, err := a.client.ListCategories(ctx)
	if err != nil {
		return a.fail("load categories", err)
	}
	a.table("ID\tNAME\tDESCRIPTION\tIMAGE", func(w io.Writer) {
		for _, c := range cats {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Description, c.ImageURL)
		}
	})
	return nil
}

type categoryFlags struct {
	client.CategoryInput
	image string
}

func (f *categoryFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Name, "name", "", "category name")
	cmd.Flags().StringVar(&f.Description, "description", "", "description")
	cmd.Flags().StringVar(&f.image, "image", "", "path to an image file")
}

func (a *adminCLI) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "categories", Short: "Manage product categories"}

	var cf categoryFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			img, done, err := openImage(cf.image)
			if err != nil {
				return a.fail("open image", err)
			}
			defer done()
			in := cf.CategoryInput
			in.Image = img
			_, err = a.client.CreateCategory(cmd.Context(), in)
			return a.after(cmd.Context(), err, "create category", "category created", a.listCategories)
		},
	}
	cf.bind(create)

	var uf categoryFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a category; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur, err := a.client.GetCategory(ctx, args[0])
			if err != nil {
				return a.fail("load category", err)
			}
			in := client.CategoryInput{Name: cur.Name, Description: cur.Description}
			if cmd.Flags().Changed("name") {
				in.Name = uf.Name
			}
			if cmd.Flags().Changed("description") {
				in.Description = uf.Description
			}
			img, done, err := openImage(uf.image)
			if err != nil {
				return a.fail("open image", err)
			}
			defer done()
			in.Image = img

			_, err = a.client.UpdateCategory(ctx, args[0], in)
			return a.after(ctx, err, "update category", "category updated", a.listCategories)
		},
	}
	uf.bind(update)

	cmd.AddCommand(
		listCmd("categories", a.listCategories),
		create,
		update,
		a.deleteCmd("category", func(ctx context.Context, id string) error { return a.client.DeleteCategory(ctx, id) }, a.listCategories),
	)
	return cmd
}

// Products

func (a *adminCLI) productLister(categoryID *string) func(context.Context) error {
	return func(ctx context.Context) error {
		var filter string
		if categoryID != nil {
			filter = *categoryID
		}
		products, err := a.client.ListProducts(ctx, filter)
		if err != nil {
			return a.fail("load products", err)
		}
		a.table("ID\tNAME\tCATEGORY\tPRICE\tSTOCK", func(w io.Writer) {
			for _, p := range products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category.Name, p.Price.StringFixed(2), p.Stock)
			}
		})
		return nil
	}
}

type productFlags struct {
	client.ProductInput
	image string
}

func (f *productFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Name, "name", "", "product name")
	cmd.Flags().StringVar(&f.Description, "description", "", "description")
	cmd.Flags().StringVar(&f.Price, "price", "", "price, e.g. 450000 or 1250000.50")
	cmd.Flags().IntVar(&f.Stock, "stock", 0, "units in stock")
	cmd.Flags().StringVar(&f.CategoryID, "category", "", "category id")
	cmd.Flags().StringVar(&f.image, "image", "", "path to an image file")
}

func (a *adminCLI) productsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Manage products"}
	listAll := a.productLister(nil)

	var category string
	list := listCmd("products", a.productLister(&category))
	list.Flags().StringVar(&category, "category", "", "only products in this category id")

	var cf productFlags
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			img, done, err := openImage(cf.image)
			if err != nil {
				return a.fail("open image", err)
			}
			defer done()
			in := cf.ProductInput
			in.Image = img
			_, err = a.client.CreateProduct(cmd.Context(), in)
			return a.after(cmd.Context(), err, "create product", "product created", listAll)
		},
	}
	cf.bind(create)

	var uf productFlags
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a product; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cur, err := a.client.GetProduct(ctx, args[0])
			if err != nil {
				return a.fail("load product", err)
			}
			in := client.ProductInput{
				Name:        cur.Name,
				Description: cur.Description,
				Price:       cur.Price.String(),
				Stock:       cur.Stock,
				CategoryID:  cur.Category.ID,
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				in.Name = uf.Name
			}
			if flags.Changed("description") {
				in.Description = uf.Description
			}
			if flags.Changed("price") {
				in.Price = uf.Price
			}
			if flags.Changed("stock") {
				in.Stock = uf.Stock
			}
			if flags.Changed("category") {
				in.CategoryID = uf.CategoryID
			}
			img, done, err := openImage(uf.image)
			if err != nil {
				return a.fail("open image", err)
			}
			defer done()
			in.Image = img

			_, err = a.client.UpdateProduct(ctx, args[0], in)
			return a.after(ctx, err, "update product", "product updated", listAll)
		},
	}
	uf.bind(update)

	cmd.AddCommand(
		list,
		create,
		update,
		a.deleteCmd("product", func(ctx context.Context, id string) error { return a.client.DeleteProduct(ctx, id) }, listAll),
	)
	return cmd
}

// Transactions

func (a *adminCLI) transactionLister(status *string) func(context.Context) error {
	return func(ctx context.Context) error {
		var filter string
		if status != nil {
			filter = *status
		}
		txs, err := a.client.ListTransactions(ctx, filter)
		if err != nil {
			return a.fail("load transactions", err)
		}
		a.table("ID\tDATE\tCUSTOMER\tCONTACT\tTOTAL\tSTATUS", func(w io.Writer) {
			for _, t := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.CreatedAt.Format("2006-01-02 15:04"), t.CustomerName, t.CustomerContact,
					t.TotalPayment.StringFixed(2), t.Status)
			}
		})
		return nil
	}
}

func (a *adminCLI) showTransaction(ctx context.Context, id string) error {
	t, err := a.client.GetTransaction(ctx, id)
	if err != nil {
		return a.fail("load transaction", err)
	}
	fmt.Fprintf(a.out, "Transaction %s (%s)\n", t.ID, t.Status)
	fmt.Fprintf(a.out, "Customer: %s, %s\n", t.CustomerName, t.CustomerContact)
	fmt.Fprintf(a.out, "Address:  %s\n", t.CustomerAddress)
	fmt.Fprintf(a.out, "Proof:    %s\n", t.PaymentProof)
	a.table("PRODUCT\tQTY\tUNIT PRICE", func(w io.Writer) {
		for _, it := range t.PurchasedItems {
			fmt.Fprintf(w, "%s\t%d\t%s\n", it.Product.Name, it.Qty, it.UnitPrice.StringFixed(2))
		}
	})
	fmt.Fprintf(a.out, "Total:    %s\n", t.TotalPayment.StringFixed(2))
	return nil
}

func (a *adminCLI) verifyCmd(use, status, done string, list func(context.Context) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: "Mark a pending transaction as " + status,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := a.client.UpdateTransactionStatus(cmd.Context(), args[0], status)
			return a.after(cmd.Context(), err, use+" transaction", done, list)
		},
	}
}

func (a *adminCLI) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "transactions", Short: "Review and verify orders"}
	listAll := a.transactionLister(nil)

	var status string
	list := listCmd("transactions", a.transactionLister(&status))
	list.Flags().StringVar(&status, "status", "", "pending, paid or rejected")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction with its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showTransaction(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(
		list,
		show,
		a.verifyCmd("approve", trxuc.StatusPaid, "transaction approved", listAll),
		a.verifyCmd("reject", trxuc.StatusRejected, "transaction rejected", listAll),
		a.deleteCmd("transaction", func(ctx context.Context, id string) error { return a.client.DeleteTransaction(ctx, id) }, listAll),
	)
	return cmd
}

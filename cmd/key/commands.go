package key

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zxliu/RedisDesktopManager/cmd/util"
	"github.com/zxliu/RedisDesktopManager/lib/keymodel"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

var (
	showCmd = &cobra.Command{
		Use:   "show [key]",
		Short: "Prints type, TTL and all rows of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := openModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer model.Close()

			if err := loadRows(cmd.Context(), model, model.RowsCount()); err != nil {
				return err
			}

			fmt.Printf("key:   %s\n", model.KeyName())
			fmt.Printf("type:  %s\n", model.Type())
			fmt.Printf("ttl:   %d\n", model.TTL())
			fmt.Printf("rows:  %d\n\n", model.RowsCount())

			columns := model.ColumnNames()
			fmt.Printf("%-6s", "#")
			for _, column := range columns {
				fmt.Printf("%-24s", column)
			}
			fmt.Println()
			for i := 0; model.IsRowLoaded(i); i++ {
				row, _ := model.Row(i)
				fmt.Printf("%-6d", i)
				for _, column := range columns {
					fmt.Printf("%-24s", strconv.Quote(row.Text(column)))
				}
				fmt.Println()
			}
			return nil
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [key] [fields...]",
		Short: "Adds a row (list, set: value | zset: value score | hash: field value)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := openModel(cmd.Context(), args[0])
			if errors.Is(err, keymodel.ErrKeyNotFound) && viper.GetString("type") != "" {
				model, err = keymodel.NewOfType(conn, args[0], util.GetDB(), keymodel.NoExpiry, keymodel.TypeTag(viper.GetString("type")))
			}
			if err != nil {
				return err
			}
			defer model.Close()

			row, err := rowFromArgs(model.Type(), args[1:])
			if err != nil {
				return err
			}
			if err := model.AddRow(cmd.Context(), row); err != nil {
				return err
			}
			fmt.Println("row added successfully")
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [key] [index] [fields...]",
		Short: "Replaces the row at index if nobody changed it in the meantime",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			model, err := openModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer model.Close()

			row, err := rowFromArgs(model.Type(), args[2:])
			if err != nil {
				return err
			}
			if err := loadRows(cmd.Context(), model, index+1); err != nil {
				return err
			}
			if err := model.UpdateRow(cmd.Context(), index, row); err != nil {
				return err
			}
			fmt.Println("row updated successfully")
			return nil
		},
	}
	removeRowCmd = &cobra.Command{
		Use:   "rm-row [key] [index]",
		Short: "Removes the row at index if nobody changed it in the meantime",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			model, err := openModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer model.Close()

			if err := loadRows(cmd.Context(), model, index+1); err != nil {
				return err
			}
			if !model.IsRowLoaded(index) {
				return fmt.Errorf("row %d does not exist", index)
			}
			if err := model.RemoveRow(cmd.Context(), index); err != nil {
				return err
			}
			if model.IsRemoved() {
				fmt.Println("row removed successfully, the key is gone")
			} else {
				fmt.Println("row removed successfully")
			}
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "rm [key]",
		Short: "Deletes a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := openModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer model.Close()

			if err := model.RemoveKey(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("key removed successfully")
			return nil
		},
	}
	ttlCmd = &cobra.Command{
		Use:   "ttl [key] [seconds]",
		Short: "Sets the time to live of a key, values <= 0 remove the expiry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("seconds must be a number: %w", err)
			}
			model, err := openModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer model.Close()

			if err := model.SetTTL(cmd.Context(), ttl); err != nil {
				return err
			}
			fmt.Printf("ttl set to %d\n", model.TTL())
			return nil
		},
	}
	renameCmd = &cobra.Command{
		Use:   "rename [key] [new name]",
		Short: "Renames a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := openModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer model.Close()

			if err := model.SetKeyName(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Printf("key renamed to %s\n", model.KeyName())
			return nil
		},
	}
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func openModel(ctx context.Context, key string) (keymodel.KeyModel, error) {
	return keymodel.New(ctx, conn, key, util.GetDB())
}

// loadRows loads the first count rows and waits for the load to finish
func loadRows(ctx context.Context, model keymodel.KeyModel, count int) error {
	done := make(chan error, 1)
	model.LoadRows(ctx, 0, count, func(err error) {
		done <- err
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rowFromArgs builds a row in the shape of the key type
func rowFromArgs(tag keymodel.TypeTag, args []string) (keymodel.Row, error) {
	switch {
	case (tag == keymodel.TypeList || tag == keymodel.TypeSet || tag == keymodel.TypeString) && len(args) == 1:
		return keymodel.ValueRow(args[0]), nil
	case tag == keymodel.TypeZSet && len(args) == 2:
		return keymodel.Row{
			keymodel.ColumnValue: []byte(args[0]),
			keymodel.ColumnScore: []byte(args[1]),
		}, nil
	case tag == keymodel.TypeHash && len(args) == 2:
		return keymodel.FieldRow(args[0], args[1]), nil
	default:
		return nil, common.NewError(common.RetCInvalidRow,
			fmt.Sprintf("a %s row needs %s", tag, strings.Join(columnsOf(tag), " and ")))
	}
}

func columnsOf(tag keymodel.TypeTag) []string {
	switch tag {
	case keymodel.TypeZSet:
		return []string{keymodel.ColumnValue, keymodel.ColumnScore}
	case keymodel.TypeHash:
		return []string{"field", keymodel.ColumnValue}
	default:
		return []string{keymodel.ColumnValue}
	}
}

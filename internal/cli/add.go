package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/roster/pkg/types"
)

type addFlags struct {
	name     string
	age      int
	gender   string
	position string
	salary   string
	rate     string
	hours    string
	bonus    string
}

func newAddCmd(a *app) *cobra.Command {
	var f addFlags
	cmd := &cobra.Command{
		Use:   "add <hourly|salaried>",
		Short: "Create a worker record",
		Long: `Create a worker in the given category and print its identifier.

Hourly workers take --rate and --hours; salaried workers take --bonus.

Example:
  roster add hourly --name "jane doe" --age 30 --gender f --position clerk \
      --salary 1000 --rate 12.5 --hours 40
  roster add salaried --name "bob" --age 45 --gender m --position nurse \
      --salary 3000 --bonus 150`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: types.Categories,
		RunE: func(cmd *cobra.Command, args []string) error {
			category := args[0]
			kind, err := types.KindOf(category)
			if err != nil {
				return fmt.Errorf("%w %q (valid: %s)", err, category, strings.Join(types.Categories, ", "))
			}
			in, err := f.input()
			if err != nil {
				return err
			}
			if err := in.Validate(kind); err != nil {
				return err
			}

			st, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			id, err := st.Create(cmd.Context(), category, in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.flags.jsonMode {
				e, err := st.Get(category, id)
				if err != nil {
					return err
				}
				return writeJSON(w, toJSON(e))
			}
			fmt.Fprintf(w, "Created %s worker %s\n", category, id)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "full name")
	fl.IntVar(&f.age, "age", 0, "age in years")
	fl.StringVar(&f.gender, "gender", "", "gender")
	fl.StringVar(&f.position, "position", "", "job position")
	fl.StringVar(&f.salary, "salary", "", "base salary")
	fl.StringVar(&f.rate, "rate", "", "hourly rate (hourly only)")
	fl.StringVar(&f.hours, "hours", "", "hours worked (hourly only)")
	fl.StringVar(&f.bonus, "bonus", "", "monthly bonus (salaried only)")
	return cmd
}

// input parses the numeric flags. Empty amounts are zero and left to
// WorkerInput.Validate.
func (f addFlags) input() (types.WorkerInput, error) {
	var in types.WorkerInput
	in.Name = f.name
	in.Age = f.age
	in.Gender = f.gender
	in.Position = f.position

	var err error
	if in.Salary, err = parseAmount(types.LabelSalary, f.salary); err != nil {
		return in, err
	}
	if in.HourlyRate, err = parseAmount(types.LabelHourlyRate, f.rate); err != nil {
		return in, err
	}
	if in.HoursWorked, err = parseAmount(types.LabelHoursWorked, f.hours); err != nil {
		return in, err
	}
	if in.MonthlyBonus, err = parseAmount(types.LabelMonthlyBonus, f.bonus); err != nil {
		return in, err
	}
	return in, nil
}

func parseAmount(label, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &types.ValidationWarning{Field: label, Value: raw, Reason: "not a number"}
	}
	return d, nil
}

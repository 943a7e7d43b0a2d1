package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AnatoleLucet/proact"
)

func demoCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the collection scenario and print its trace",
		Long: `Run a list of numbers through a filter, a map, a reduction and an
index lookup, then print every derived view after each edit of the source.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			if err := proact.Configure(cfg, proact.WithLogger(logger)); err != nil {
				return err
			}
			defer proact.Reset()

			return runDemo(cmd.OutOrStdout())
		},
	}
}

func describe(m *proact.Mutation) string {
	if len(m.Perm) > 0 {
		return fmt.Sprintf("%s perm=%v", m.Op, m.Perm)
	}

	return fmt.Sprintf("%s index=%d old=%v new=%v", m.Op, m.Index, m.Old, m.New)
}

func runDemo(w io.Writer) error {
	numbers := proact.NewArray(1, 2, 3, 4)

	even, err := numbers.Filter(func(n int) bool { return n%2 == 0 })
	if err != nil {
		return err
	}

	squares, err := proact.Map(even, func(n int) int { return n * n })
	if err != nil {
		return err
	}

	total, err := proact.Reduce(squares, func(acc, n int) int { return acc + n }, 0)
	if err != nil {
		return err
	}

	two, err := numbers.IndexOf(2)
	if err != nil {
		return err
	}

	_, err = even.OnMutation(func(m *proact.Mutation) error {
		fmt.Fprintf(w, "  even %s\n", describe(m))
		return nil
	})
	if err != nil {
		return err
	}

	step := func(name string, fn func() error) error {
		if err := fn(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		fmt.Fprintf(w, "%-12s numbers=%v even=%v squares=%v total=%d indexOf(2)=%d\n",
			name, numbers.Peek(), even.Peek(), squares.Peek(), total.Peek(), two.Peek())
		return nil
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"initial", func() error { return nil }},
		{"unshift(6)", func() error { return numbers.Unshift(6) }},
		{"pop()", func() error {
			_, err := numbers.Pop()
			return err
		}},
		{"set(1, 8)", func() error { return numbers.Set(1, 8) }},
		{"reverse()", numbers.Reverse},
		{"batch", func() error {
			return proact.Batch(func() {
				_ = numbers.Push(10)
				_ = numbers.Push(12)
			})
		}},
	}

	for _, s := range steps {
		if err := step(s.name, s.fn); err != nil {
			return err
		}
	}

	return nil
}

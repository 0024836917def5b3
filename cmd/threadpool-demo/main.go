// Command threadpool-demo exercises the pool with a mix of cpu-bound,
// sleepy, sync, and loop workloads, timing each round.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vansergh/lib-threadpool/durlog"
	"github.com/vansergh/lib-threadpool/threadpool"
	"github.com/vansergh/lib-threadpool/varlist"
)

type Config struct {
	threads int
	tasks   int
	rounds  int
	size    int
	sharp   bool
	verbose bool
}

func createRootCmd() *cobra.Command {
	var config Config

	rootCmd := &cobra.Command{
		Use:          `threadpool-demo`,
		Short:        `Exercise the thread pool with sample workloads`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(&config)
		},
	}

	rootCmd.Flags().IntVarP(&config.threads, `threads`, `t`, 32, `Worker count (0 = number of CPUs)`)
	rootCmd.Flags().IntVarP(&config.tasks, `tasks`, `n`, 10, `Tasks per round`)
	rootCmd.Flags().IntVarP(&config.rounds, `rounds`, `r`, 3, `Rounds to average over`)
	rootCmd.Flags().IntVarP(&config.size, `size`, `s`, 1000, `Workload size`)
	rootCmd.Flags().BoolVar(&config.sharp, `sharp`, false, `Discard queued tasks on shutdown`)
	rootCmd.Flags().BoolVarP(&config.verbose, `verbose`, `v`, false, `Debug logging`)

	return rootCmd
}

func main() {
	if err := createRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose bool) *logiface.Logger[logiface.Event] {
	level := logiface.LevelInformational
	if verbose {
		level = logiface.LevelDebug
	}
	return izerolog.L.New(
		izerolog.L.WithZerolog(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()),
		izerolog.L.WithLevel(level),
	).Logger()
}

func run(config *Config) error {
	logger := newLogger(config.verbose)

	mode := threadpool.DestroySmooth
	if config.sharp {
		mode = threadpool.DestroySharp
	}

	pool := threadpool.NewPool(&threadpool.PoolConfig{
		Concurrency: config.threads,
		DestroyMode: mode,
		Logger:      logger,
	})
	defer pool.Close()

	var stdout sync.Mutex

	var average time.Duration
	for round := 0; round < config.rounds; round++ {
		timer := durlog.Start(logger, fmt.Sprintf(`round %d`, round+1))

		for i := 0; i < config.tasks; i++ {
			if err := pool.Async(func(*threadpool.Task) error {
				reverseChurn(config.size)
				return nil
			}); err != nil {
				return err
			}

			id := i
			if err := pool.Async(func(*threadpool.Task) error {
				napped := nap()
				stdout.Lock()
				defer stdout.Unlock()
				fmt.Printf("print task #%d slept %s\n", id, napped)
				return nil
			}); err != nil {
				return err
			}

			future, err := threadpool.Sync(pool, func() (int, error) {
				return countPrimes(config.size), nil
			})
			if err != nil {
				return err
			}
			primes, err := future.Wait(context.Background())
			if err != nil {
				return err
			}
			stdout.Lock()
			fmt.Printf("\t[%d] = %d primes\n", id, primes)
			stdout.Unlock()
		}

		if err := submitCountdown(pool, config.tasks); err != nil {
			return err
		}

		pool.Wait()
		average += timer.Stop()
	}
	average /= time.Duration(config.rounds)

	fmt.Printf("average round: %s ns\n", formatThousands(average.Nanoseconds()))
	return nil
}

// submitCountdown submits a loop task counting up to limit via its variable
// bag, exercising the reschedule path.
func submitCountdown(pool *threadpool.Pool, limit int) error {
	task := threadpool.NewTask()
	varlist.Add(&task.Vars, 0)
	varlist.Add(&task.Vars, limit)
	task.SetCondition(func(t *threadpool.Task) bool {
		current, err := varlist.Get[int](&t.Vars, 0)
		if err != nil {
			return false
		}
		limit, err := varlist.Get[int](&t.Vars, 1)
		if err != nil {
			return false
		}
		return *current < *limit
	})
	task.SetLoopJob(func(t *threadpool.Task) error {
		current, err := varlist.Get[int](&t.Vars, 0)
		if err != nil {
			return err
		}
		*current++
		return nil
	})
	return pool.AddAsyncTask(task)
}

// countPrimes is a deliberately naive prime counter, used as the cpu-bound
// sync workload.
func countPrimes(size int) int {
	primes := 0
	for num := 1; num <= size; num++ {
		i := 2
		for ; i <= num; i++ {
			if num%i == 0 {
				break
			}
		}
		if i == num {
			primes++
		}
	}
	return primes
}

// reverseChurn shuffles a slice back and forth through repeated
// front-insertion, used as the allocation-heavy async workload.
func reverseChurn(size int) {
	arr := make([]int, size)
	for i := range arr {
		arr[i] = i + 1
	}
	res := make([]int, 0, size)
	for _, v := range arr {
		res = append([]int{v}, res...)
	}
	sort.Ints(res)
}

func nap() time.Duration {
	d := time.Duration(rand.Intn(5)+1) * 100 * time.Millisecond
	time.Sleep(d)
	return d
}

func formatThousands(value int64) string {
	result := strconv.FormatInt(value, 10)
	for i := len(result) - 3; i > 0; i -= 3 {
		result = result[:i] + `,` + result[i:]
	}
	return result
}

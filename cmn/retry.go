package cmn

import "time"

// RetryArgs mirrors the teacher's cmn.RetryArgs (see etl/dp.go) used to
// retry subprocess and lock-acquisition calls with soft/hard error budgets.
type RetryArgs struct {
	Call    func() (int, error)
	Action  string
	SoftErr int // retry budget; every error counts against it
	HardErr int // retry budget; every error counts against it too
	Sleep   time.Duration
	BackOff bool
}

// CallWithRetry runs Call until it succeeds or both budgets are exhausted.
// Errors are not classified: each failure counts against both budgets, so
// it gives up after max(SoftErr, HardErr) retries.
func CallWithRetry(a *RetryArgs) error {
	var (
		soft, hard int
		sleep      = a.Sleep
	)
	for {
		_, err := a.Call()
		if err == nil {
			return nil
		}
		hard++
		soft++
		if hard > a.HardErr && soft > a.SoftErr {
			return err
		}
		time.Sleep(sleep)
		if a.BackOff {
			sleep *= 2
		}
	}
}

package benchreport

// SizeRecord holds the three runtimes and two speedups of one kernel at one
// problem size.
type SizeRecord struct {
	Size  int
	Label string

	CPU    Measurement
	OmpCPU Measurement
	OmpGPU Measurement

	SpeedOmpCPU Speedup
	SpeedOmpGPU Speedup
}

// Cells returns the formatted values in Metrics order.
func (r SizeRecord) Cells(precision int) []string {
	return []string{
		r.CPU.Format(precision),
		r.OmpCPU.Format(precision),
		r.OmpGPU.Format(precision),
		r.SpeedOmpCPU.Format(precision),
		r.SpeedOmpGPU.Format(precision),
	}
}

type KernelReport struct {
	Name  string
	Dir   string
	Sizes []SizeRecord
}

// Cells flattens every size record, smallest size first.
func (k KernelReport) Cells(precision int) []string {
	out := make([]string, 0, len(k.Sizes)*len(Metrics))
	for _, r := range k.Sizes {
		out = append(out, r.Cells(precision)...)
	}
	return out
}

// Measured reports how many of the kernel's runtimes were found.
func (k KernelReport) Measured() int {
	n := 0
	for _, r := range k.Sizes {
		for _, m := range []Measurement{r.CPU, r.OmpCPU, r.OmpGPU} {
			if m.Valid {
				n++
			}
		}
	}
	return n
}

// Corpus is the ordered set of kernel reports written to a single table.
type Corpus []KernelReport

package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// JobFile is the INI file holding per-job parameter defaults, one section
// per job name. Command-line flags override these values. The run-all
// section lists which jobs a combined run launches.
//
//	[grouping]
//	transaction-file = data/transaction.csv
//	output-file = target/sums.csv
//	chunk-size = 10
//
//	[run-all]
//	jobs = grouping, export
type JobFile struct {
	file *ini.File
}

// LoadJobFile parses the job-defaults file. A missing file is not an error:
// every job can be configured from flags alone.
func LoadJobFile(path string) (*JobFile, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("load job file %s: %w", path, err)
	}
	return &JobFile{file: file}, nil
}

// Params returns the defaults of one job section. Unknown sections yield
// empty params.
func (f *JobFile) Params(job string) Params {
	params := Params{}
	if f == nil || f.file == nil {
		return params
	}
	section, err := f.file.GetSection(job)
	if err != nil {
		return params
	}
	for _, key := range section.Keys() {
		params[key.Name()] = key.String()
	}
	return params
}

// RunAllJobs returns the job names listed by the run-all section, in file
// order.
func (f *JobFile) RunAllJobs() []string {
	raw := f.Params("run-all")["jobs"]
	if raw == "" {
		return nil
	}
	var jobs []string
	for _, name := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			jobs = append(jobs, trimmed)
		}
	}
	return jobs
}

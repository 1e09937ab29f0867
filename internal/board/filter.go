package board

import "strings"

// JobFilter narrows an already-fetched job list in memory. Zero values mean
// "no constraint" for that dimension.
type JobFilter struct {
	Search   string // matches title, company, description or requirements
	Location string // substring match
	Category string // exact match
	JobType  JobType
}

// FilterJobs applies f to jobs, preserving order. The input slice is never
// mutated.
func FilterJobs(jobs []*Job, f JobFilter) []*Job {
	out := make([]*Job, 0, len(jobs))
	search := strings.ToLower(strings.TrimSpace(f.Search))
	location := strings.ToLower(strings.TrimSpace(f.Location))
	for _, job := range jobs {
		if search != "" && !matchesSearch(job, search) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}
		if f.Category != "" && job.Category != f.Category {
			continue
		}
		if f.JobType != "" && job.JobType != f.JobType {
			continue
		}
		out = append(out, job)
	}
	return out
}

func matchesSearch(job *Job, search string) bool {
	return strings.Contains(strings.ToLower(job.Title), search) ||
		strings.Contains(strings.ToLower(job.Company), search) ||
		strings.Contains(strings.ToLower(job.Description), search) ||
		strings.Contains(strings.ToLower(job.Requirements), search)
}

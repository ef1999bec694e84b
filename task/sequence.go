package task

// FilterByStatus keeps tasks with status s. An empty s keeps everything.
func FilterByStatus(tasks []Task, s Status) []Task {
	if s == "" {
		return tasks
	}
	return filter(tasks, func(t Task) bool { return t.Status == s })
}

// FilterByPriority keeps tasks with priority p. An empty p keeps everything.
func FilterByPriority(tasks []Task, p Priority) []Task {
	if p == "" {
		return tasks
	}
	return filter(tasks, func(t Task) bool { return t.Priority == p })
}

// Find returns the task with the given id.
func Find(tasks []Task, id int64) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// IDs returns the identifiers in order.
func IDs(tasks []Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}

func filter(tasks []Task, keep func(Task) bool) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

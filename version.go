package taskmaster

// Version is stamped at build time with -ldflags "-X github.com/GoCodeAlone/taskmaster.Version=...".
var Version = "dev"

package output_storage

// Write implements io.Writer so an OutputStorage can be assigned to
// exec.Cmd.Stdout/Stderr. It stores a copy of p because os/exec reuses its
// read buffer between calls.
func (s *OutputStorage) Write(p []byte) (int, error) {
	if s == nil {
		return len(p), nil
	}
	if len(p) == 0 {
		return 0, nil
	}

	s.Append(append([]byte(nil), p...))

	return len(p), nil
}

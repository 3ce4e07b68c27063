package snapshot

// The merge functions below are the only code paths that mutate a snapshot.
// Keeping the dual-write (TestRecord plus the nested spec copy) in a single
// place is what enforces the denormalization invariant: the two sequences
// can never drift because no other call site appends samples.

// AppendSpecSample appends a whole-spec reading to the spec's direct sample
// sequence, creating the SpecRecord on first use. A zero timestamp is
// replaced with the current time.
func (s *RunSnapshot) AppendSpecSample(specName string, smp Sample) {
	if smp.Timestamp == 0 {
		smp.Timestamp = nowMillis()
	}

	spec := s.ensureSpec(specName)
	spec.Samples = append(spec.Samples, smp)
}

// AppendTestSample appends a reading for a (spec, test) pair to both the
// TestRecord and the nested per-test sequence under the SpecRecord. The two
// copies are value-equal, never reference-shared: Sample is a value type, so
// each append stores an independent copy.
func (s *RunSnapshot) AppendTestSample(specName, testTitle string, smp Sample) {
	if smp.Timestamp == 0 {
		smp.Timestamp = nowMillis()
	}

	test := s.ensureTest(specName, testTitle)
	test.Samples = append(test.Samples, smp)

	spec := s.ensureSpec(specName)
	if _, ok := spec.Tests[testTitle]; !ok {
		spec.TestOrder = append(spec.TestOrder, testTitle)
	}

	spec.Tests[testTitle] = append(spec.Tests[testTitle], smp)
}

// ApplyBatch applies buffered entries in order and returns the number of
// entries merged. Entries without a spec name or memory payload are skipped.
// Entries without a test title are treated as whole-spec readings.
func (s *RunSnapshot) ApplyBatch(entries []BatchEntry) int {
	merged := 0

	for _, e := range entries {
		if e.SpecName == "" || e.Memory == nil {
			continue
		}

		if e.TestTitle == "" {
			s.AppendSpecSample(e.SpecName, *e.Memory)
		} else {
			s.AppendTestSample(e.SpecName, e.TestTitle, *e.Memory)
		}

		merged++
	}

	return merged
}

// ensureSpec returns the SpecRecord for specName, creating it on first use.
func (s *RunSnapshot) ensureSpec(specName string) *SpecRecord {
	spec, ok := s.Specs[specName]
	if !ok {
		spec = &SpecRecord{
			SpecName:  specName,
			Samples:   make([]Sample, 0, 8),
			Tests:     make(map[string][]Sample),
			TestOrder: make([]string, 0, 8),
			CreatedAt: nowMillis(),
		}

		s.Specs[specName] = spec
		s.SpecOrder = append(s.SpecOrder, specName)
	}

	return spec
}

// ensureTest returns the TestRecord for the (spec, test) pair, creating it
// on first use.
func (s *RunSnapshot) ensureTest(specName, testTitle string) *TestRecord {
	key := TestKey(specName, testTitle)

	test, ok := s.Tests[key]
	if !ok {
		test = &TestRecord{
			SpecPath:  specName,
			TestTitle: testTitle,
			Samples:   make([]Sample, 0, 8),
			CreatedAt: nowMillis(),
		}

		s.Tests[key] = test
		s.TestOrder = append(s.TestOrder, key)
	}

	return test
}

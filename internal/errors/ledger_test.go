package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type LedgerErrorTestSuite struct {
	suite.Suite
	id uuid.UUID
}

func (s *LedgerErrorTestSuite) SetupTest() {
	s.id = uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")
}

func TestLedgerErrorTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerErrorTestSuite))
}

func (s *LedgerErrorTestSuite) TestNotFound_NamesEntityAndID() {
	err := NotFound(EntityCategory, s.id)

	s.Equal("category 7d444840-9dc0-11d1-b245-5ffdce74fad2 not found", err.Error())
	s.True(IsNotFound(err))
	s.Equal(CategoryNotFound, CodeFor(err))
	s.Equal(s.id.String(), err.ID)
}

func (s *LedgerErrorTestSuite) TestReferencedConflict_ReportsCount() {
	err := ReferencedConflict(EntityCategory, s.id, 3)

	s.Contains(err.Error(), "referenced by 3 transaction(s)")
	s.Equal(int64(3), err.Count)
	s.True(IsConflict(err))
	s.Equal(CategoryInUse, CodeFor(err))
}

func (s *LedgerErrorTestSuite) TestKindOf_ThroughWrapping() {
	base := InternalStorage("list transactions", errors.New("disk I/O error"))
	wrapped := fmt.Errorf("service layer: %w", base)

	s.Equal(KindInternalStorage, KindOf(wrapped))
	s.True(IsInternalStorage(wrapped))
	s.Equal(SystemDatabaseError, CodeFor(wrapped))
	s.Contains(wrapped.Error(), "failed to list transactions: disk I/O error")
}

func (s *LedgerErrorTestSuite) TestUnwrap_ExposesCause() {
	cause := errors.New("unexpected EOF")
	err := ExternalService(AIInvalidResponse, "could not parse suggestions", cause)

	s.ErrorIs(err, cause)
	s.True(IsExternalService(err))
	s.Equal(AIInvalidResponse, CodeFor(err))
}

func (s *LedgerErrorTestSuite) TestCodeFor_Fallbacks() {
	testCases := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"plain error", errors.New("boom"), SystemInternalError},
		{"conflict without code", &LedgerError{Kind: KindConflict}, CategoryAlreadyExists},
		{"invalid input without code", &LedgerError{Kind: KindInvalidInput}, ValidationGeneral},
		{"not found for unknown entity", NotFound("widget", s.id), SystemNotFound},
		{"rule not found", NotFound(EntityRule, s.id), RuleNotFound},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, CodeFor(tc.err))
		})
	}
}

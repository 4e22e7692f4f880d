package testutils

import (
	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendHTML(to []string, subject, htmlBody string) error {
	args := m.Called(to, subject, htmlBody)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationCode(to, code string) error {
	args := m.Called(to, code)
	return args.Error(0)
}

func (m *MockNotifier) SendVisitorWaiting(to, visitorName, fromCompany string) error {
	args := m.Called(to, visitorName, fromCompany)
	return args.Error(0)
}

func (m *MockNotifier) SendIdentityCardLink(to, cardURL string) error {
	args := m.Called(to, cardURL)
	return args.Error(0)
}

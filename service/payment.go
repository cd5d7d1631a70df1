package service

// PaymentService processes payments.
type PaymentService struct {
	logger Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(logger Logger) *PaymentService {
	return &PaymentService{logger: logger}
}

// ProcessPayment logs the start and the end of a payment.
func (s *PaymentService) ProcessPayment() error {
	if err := s.logger.Log("Payment started."); err != nil {
		return err
	}
	return s.logger.Log("Payment processed.")
}

package feedback

// FailureType is one of the nine behavioral categories the coach assigns
// to a reviewed trade.
type FailureType string

// Failure type constants. The literal values are the category codes the
// model is instructed to emit; they are stored as-is.
const (
	FailureLeverage        FailureType = "무리한_레버리지"
	FailureConcentration   FailureType = "포트폴리오_실패"
	FailureFOMOChase       FailureType = "FOMO_추격매수"
	FailureExternalTip     FailureType = "외부정보_의존"
	FailureBlindConviction FailureType = "근거없는_확신"
	FailurePanicSell       FailureType = "Panic_Sell_공포투매"
	FailureGreed           FailureType = "과도한_욕심"
	FailureAveragingDown   FailureType = "손실회피_물타기"
	FailureOther           FailureType = "기타"
)

var allFailureTypes = map[FailureType]bool{
	FailureLeverage:        true,
	FailureConcentration:   true,
	FailureFOMOChase:       true,
	FailureExternalTip:     true,
	FailureBlindConviction: true,
	FailurePanicSell:       true,
	FailureGreed:           true,
	FailureAveragingDown:   true,
	FailureOther:           true,
}

// Valid reports whether t is a member of the fixed taxonomy
func (t FailureType) Valid() bool {
	return allFailureTypes[t]
}

// Package excel reads and writes the business spreadsheets.
package excel

import (
	"errors"
	"fmt"
	"insurance/internal/entity/db"
	"insurance/internal/entity/dto"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheet   = "业务记录"
	templateSheet = "导入模板"
	timeLayout    = "2006-01-02 15:04"
)

// ContentType of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{"ID", "代理人", "出单员", "险种分类", "险种名称", "客户名称", "询价金额", "成交状态", "登记日期", "跟进备注"}

// 导入模板列，代理人和登记日期为可选列
const (
	colPolicyNumber    = "保单号"
	colCustomerName    = "客户名称"
	colInsuranceName   = "险种名称"
	colPolicyholder    = "投保人"
	colInsured         = "被保险人"
	colInsurancePeriod = "保险期限"
	colInquiryAmount   = "询价金额"
	colDealStatus      = "成交状态"
	colAgent           = "代理人"
	colInquiryDate     = "登记日期"
)

var templateHeaders = []string{
	colPolicyNumber, colCustomerName, colInsuranceName, colPolicyholder, colInsured,
	colInsurancePeriod, colInquiryAmount, colDealStatus, colAgent, colInquiryDate,
}

// ErrMissingHeader 表示上传的表格缺少客户名称列
var ErrMissingHeader = errors.New("spreadsheet has no 客户名称 column")

func newWorkbook(sheet string, headers []string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		f.Close()
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#E7EEF7"}},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func formatTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(timeLayout)
}

// WriteBusinesses 导出业务记录
func WriteBusinesses(w io.Writer, views []dto.BusinessView, loc *time.Location) error {
	f, err := newWorkbook(exportSheet, exportHeaders)
	if err != nil {
		return err
	}
	defer f.Close()

	for i, v := range views {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			v.ID,
			v.AgentName,
			v.UnderwriterName,
			v.InsuranceTypeName,
			v.SpecificInsuranceName,
			v.CustomerName,
			v.InquiryAmount.InexactFloat64(),
			db.DealStatusLabel(v.DealStatus),
			formatTime(v.InquiryDate, loc),
			v.FollowUpRemark,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f.Write(w)
}

// WriteTemplate 生成导入模板，包含一行示例数据
func WriteTemplate(w io.Writer) error {
	f, err := newWorkbook(templateSheet, templateHeaders)
	if err != nil {
		return err
	}
	defer f.Close()

	example := []interface{}{"P2024000001", "张三", "百万医疗", "张三", "张三", "1年", 1200, "跟进中", "", time.Now().Format("2006-01-02")}
	if err := f.SetSheetRow(templateSheet, "A2", &example); err != nil {
		return err
	}
	return f.Write(w)
}

// ReadBusinessRows 解析上传的业务表格，表头按列名匹配，顺序不限。
// 全空行被跳过，Line 为表格中的行号（从 1 开始）。
func ReadBusinessRows(r io.Reader) ([]dto.BusinessImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrMissingHeader
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	if _, ok := index[colCustomerName]; !ok {
		return nil, ErrMissingHeader
	}
	cell := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []dto.BusinessImportRow
	for n, row := range rows[1:] {
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		out = append(out, dto.BusinessImportRow{
			Line:            n + 2,
			PolicyNumber:    cell(row, colPolicyNumber),
			CustomerName:    cell(row, colCustomerName),
			InsuranceName:   cell(row, colInsuranceName),
			Policyholder:    cell(row, colPolicyholder),
			Insured:         cell(row, colInsured),
			InsurancePeriod: cell(row, colInsurancePeriod),
			InquiryAmount:   cell(row, colInquiryAmount),
			DealStatus:      cell(row, colDealStatus),
			AgentName:       cell(row, colAgent),
			InquiryDate:     cell(row, colInquiryDate),
		})
	}
	return out, nil
}
